package spawn

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"math/big"
	"time"
)

// tlsBundle pairs the server config a Node listens with and the client
// config it dials peers with. Grounded on the teacher's HTTP3Server
// (internal/runtime/netstack/http3.go), which likewise enforces TLS 1.3
// and a fixed ALPN as a QUIC precondition; unlike the teacher's production
// server this has no external CA story, since a spawned deployment's
// nodes are assumed to share a single operator and generate their own
// self-signed certificate per run.
type tlsBundle struct {
	server *tls.Config
	client *tls.Config
}

// newTLSBundle generates an in-memory self-signed certificate and returns
// the server/client *tls.Config pair a Node uses to listen and dial.
func newTLSBundle() (*tlsBundle, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	cert := tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}
	return &tlsBundle{
		server: &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{alpn},
			MinVersion:   tls.VersionTLS13,
		},
		client: &tls.Config{
			NextProtos:         []string{alpn},
			MinVersion:         tls.VersionTLS13,
			InsecureSkipVerify: true,
		},
	}, nil
}
