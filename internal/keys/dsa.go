package keys

import (
	"crypto/dsa"
	"crypto/rand"
	"crypto/x509"
	encasn1 "encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

var oidDSA = encasn1.ObjectIdentifier{1, 2, 840, 10040, 4, 1}

// ErrMalformedDSAKey is returned for DSA key encodings that do not parse.
var ErrMalformedDSAKey = errors.New("keys: malformed DSA key")

// DefaultDSASizes are the DSA parameter sizes used when none are configured.
const DefaultDSASizes = dsa.L2048N256

// ParseDSASizes maps names like "L2048N256" to parameter sizes.
func ParseDSASizes(s string) (dsa.ParameterSizes, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L1024N160":
		return dsa.L1024N160, nil
	case "L2048N224":
		return dsa.L2048N224, nil
	case "", "L2048N256":
		return dsa.L2048N256, nil
	case "L3072N256":
		return dsa.L3072N256, nil
	default:
		return 0, fmt.Errorf("keys: unknown DSA parameter sizes %q", s)
	}
}

// GenerateDSA creates a DSA keypair with fresh domain parameters.
func GenerateDSA(sizes dsa.ParameterSizes) (*dsa.PrivateKey, *KeyPair, error) {
	priv := new(dsa.PrivateKey)
	if err := dsa.GenerateParameters(&priv.Parameters, rand.Reader, sizes); err != nil {
		return nil, nil, fmt.Errorf("failed to generate DSA parameters: %w", err)
	}
	if err := dsa.GenerateKey(priv, rand.Reader); err != nil {
		return nil, nil, fmt.Errorf("failed to generate DSA key: %w", err)
	}
	pub, err := MarshalDSAPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	pk8, err := MarshalDSAPrivateKey(priv)
	if err != nil {
		return nil, nil, err
	}
	return priv, &KeyPair{
		PublicPEM:  encodePEM(publicKeyType, pub),
		PrivatePEM: encodePEM(privateKeyType, pk8),
	}, nil
}

func addAlgorithm(b *cryptobyte.Builder, p *dsa.Parameters) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(oidDSA)
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1BigInt(p.P)
			b.AddASN1BigInt(p.Q)
			b.AddASN1BigInt(p.G)
		})
	})
}

// MarshalDSAPublicKey encodes pub as a DER SubjectPublicKeyInfo.
func MarshalDSAPublicKey(pub *dsa.PublicKey) ([]byte, error) {
	var y cryptobyte.Builder
	y.AddASN1BigInt(pub.Y)
	yDER, err := y.Bytes()
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addAlgorithm(b, &pub.Parameters)
		b.AddASN1BitString(yDER)
	})
	return b.Bytes()
}

// MarshalDSAPrivateKey encodes priv as a DER PKCS#8 PrivateKeyInfo.
func MarshalDSAPrivateKey(priv *dsa.PrivateKey) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		addAlgorithm(b, &priv.Parameters)
		b.AddASN1(asn1.OCTET_STRING, func(b *cryptobyte.Builder) {
			b.AddASN1BigInt(priv.X)
		})
	})
	return b.Bytes()
}

// ParseDSAPublicKey parses a PKIX DSA public key PEM.
func ParseDSAPublicKey(data []byte) (*dsa.PublicKey, error) {
	block, err := decodePEM(data)
	if err != nil {
		return nil, err
	}
	k, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	pub, ok := k.(*dsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: want DSA public key, got %T", ErrKeyType, k)
	}
	return pub, nil
}

// ParseDSAPrivateKey parses a PKCS#8 DSA private key PEM. The public value
// is recomputed from the parameters.
func ParseDSAPrivateKey(data []byte) (*dsa.PrivateKey, error) {
	block, err := decodePEM(data)
	if err != nil {
		return nil, err
	}

	var (
		version int64
		oid     encasn1.ObjectIdentifier
		p, q, g = new(big.Int), new(big.Int), new(big.Int)
		x       = new(big.Int)

		info, alg, params, keyOctets cryptobyte.String
	)
	input := cryptobyte.String(block.Bytes)
	if !input.ReadASN1(&info, asn1.SEQUENCE) || !input.Empty() ||
		!info.ReadASN1Integer(&version) || version != 0 ||
		!info.ReadASN1(&alg, asn1.SEQUENCE) ||
		!alg.ReadASN1ObjectIdentifier(&oid) {
		return nil, ErrMalformedDSAKey
	}
	if !oid.Equal(oidDSA) {
		return nil, fmt.Errorf("%w: algorithm %v is not DSA", ErrKeyType, oid)
	}
	if !alg.ReadASN1(&params, asn1.SEQUENCE) ||
		!params.ReadASN1Integer(p) || !params.ReadASN1Integer(q) || !params.ReadASN1Integer(g) ||
		!info.ReadASN1(&keyOctets, asn1.OCTET_STRING) ||
		!keyOctets.ReadASN1Integer(x) || !keyOctets.Empty() {
		return nil, ErrMalformedDSAKey
	}
	if p.Sign() <= 0 || q.Sign() <= 0 || g.Sign() <= 0 || x.Sign() <= 0 || x.Cmp(q) >= 0 {
		return nil, ErrMalformedDSAKey
	}

	priv := &dsa.PrivateKey{
		PublicKey: dsa.PublicKey{
			Parameters: dsa.Parameters{P: p, Q: q, G: g},
			Y:          new(big.Int).Exp(g, x, p),
		},
		X: x,
	}
	return priv, nil
}
