package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"golang.org/x/crypto/acme/autocert"

	"github.com/eniz1806/ecsizer/internal/config"
)

// NewAutoTLS creates a TLS config using Let's Encrypt auto-cert, or a
// self-signed certificate when SelfSigned is set. The returned handler
// serves ACME HTTP-01 challenges and is nil for self-signed certificates.
func NewAutoTLS(cfg config.AutoTLSConfig) (*tls.Config, http.Handler, error) {
	if cfg.SelfSigned {
		tlsCfg, err := generateSelfSigned(cfg.Domains)
		if err != nil {
			return nil, nil, fmt.Errorf("generate self-signed cert: %w", err)
		}
		return tlsCfg, nil, nil
	}

	if len(cfg.Domains) == 0 {
		return nil, nil, fmt.Errorf("auto-tls requires at least one domain")
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = "autocert-cache"
	}

	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(cacheDir),
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
	}

	return m.TLSConfig(), m.HTTPHandler(nil), nil
}

// generateSelfSigned issues a one-year ECDSA certificate for hosts, falling
// back to localhost and the loopback addresses when hosts is empty.
func generateSelfSigned(hosts []string) (*tls.Config, error) {
	if len(hosts) == 0 {
		hosts = []string{"localhost", "127.0.0.1", "::1"}
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}
	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{Organization: []string{"ecsizer"}},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}

	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}
