// Package envelope implements hybrid encryption streams: bulk data is
// encrypted with AES-256-GCM under a fresh session key, and the session key
// and nonce are wrapped for the recipient with RSA-OAEP (SHA-256).
//
// Wire format:
//
//	magic     14 bytes  "RSA_AES_GCM_V1"
//	length     2 bytes  big-endian length of the wrapped blob
//	wrapped    n bytes  RSA-OAEP(key (32 bytes) || nonce (12 bytes))
//	body       m bytes  AES-256-GCM ciphertext
//	tag       16 bytes  GCM authentication tag
//
// The header is not authenticated by the tag; tampering with it surfaces as
// a key or format error instead.
package envelope
