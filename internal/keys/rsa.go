package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
)

// DefaultRSABits is the modulus size used by GenerateRSA when bits is 0.
const DefaultRSABits = 2048

// GenerateRSA creates an RSA keypair.
func GenerateRSA(bits int) (*rsa.PrivateKey, *KeyPair, error) {
	if bits == 0 {
		bits = DefaultRSABits
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	pk8, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, err
	}
	return priv, &KeyPair{
		PublicPEM:  encodePEM(publicKeyType, pub),
		PrivatePEM: encodePEM(privateKeyType, pk8),
	}, nil
}

// ParseRSAPublicKey parses a PKIX or PKCS#1 RSA public key PEM.
func ParseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	block, err := decodePEM(data)
	if err != nil {
		return nil, err
	}
	if block.Type == "RSA PUBLIC KEY" {
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}
	k, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	pub, ok := k.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: want RSA public key, got %T", ErrKeyType, k)
	}
	return pub, nil
}

// ParseRSAPrivateKey parses a PKCS#8 or PKCS#1 RSA private key PEM.
func ParseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, err := decodePEM(data)
	if err != nil {
		return nil, err
	}
	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	priv, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: want RSA private key, got %T", ErrKeyType, k)
	}
	return priv, nil
}
