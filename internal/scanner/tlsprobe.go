package scanner

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/khanhnv2901/domainscan/internal/env"
)

// tlsScanner inspects the TLS handshake a domain negotiates: protocol
// version, cipher suite, and certificate posture.
type tlsScanner struct{}

func init() { Register(&tlsScanner{}) }

// Cipher suites that should not be negotiated anymore.
var weakCipherSuites = map[uint16]bool{
	tls.TLS_RSA_WITH_RC4_128_SHA:                true,
	tls.TLS_RSA_WITH_3DES_EDE_CBC_SHA:           true,
	tls.TLS_RSA_WITH_AES_128_CBC_SHA:            true,
	tls.TLS_RSA_WITH_AES_256_CBC_SHA:            true,
	tls.TLS_ECDHE_ECDSA_WITH_RC4_128_SHA:        true,
	tls.TLS_ECDHE_RSA_WITH_RC4_128_SHA:          true,
	tls.TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA:     true,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256: true,
}

func (*tlsScanner) Name() string { return "tls" }

func (*tlsScanner) Headers() []string {
	return []string{"TLS Version", "Cipher Suite", "Weak Cipher", "Certificate Issuer", "Certificate Expiry", "Days Remaining"}
}

func (*tlsScanner) Scan(ctx context.Context, domain string, e env.Environment, opts Options) (any, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 15 * time.Second},
		Config: &tls.Config{
			ServerName: domain,
			// Handshake details are wanted even for broken chains.
			InsecureSkipVerify: true,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(domain, "443"))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()

	result := map[string]any{
		"tls_version":  tls.VersionName(state.Version),
		"cipher_suite": tls.CipherSuiteName(state.CipherSuite),
		"weak_cipher":  weakCipherSuites[state.CipherSuite],
	}

	if len(state.PeerCertificates) > 0 {
		cert := state.PeerCertificates[0]
		result["certificate_issuer"] = cert.Issuer.CommonName
		result["certificate_expiry"] = cert.NotAfter.UTC().Format(time.RFC3339)
		result["days_remaining"] = int(time.Until(cert.NotAfter).Hours() / 24)
	}

	return result, nil
}

func (*tlsScanner) Rows(payload any) [][]any {
	data, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	return [][]any{{
		data["tls_version"],
		data["cipher_suite"],
		data["weak_cipher"],
		data["certificate_issuer"],
		data["certificate_expiry"],
		data["days_remaining"],
	}}
}
