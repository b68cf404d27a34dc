package spawn

import "testing"

func TestNewTLSBundleProducesUsableConfigs(t *testing.T) {
	bundle, err := newTLSBundle()
	if err != nil {
		t.Fatalf("newTLSBundle: %v", err)
	}
	if len(bundle.server.Certificates) != 1 {
		t.Fatalf("expected exactly one server certificate, got %d", len(bundle.server.Certificates))
	}
	if bundle.server.NextProtos[0] != alpn || bundle.client.NextProtos[0] != alpn {
		t.Fatalf("server and client ALPN must both be %q", alpn)
	}
	if !bundle.client.InsecureSkipVerify {
		t.Fatalf("client config must skip verification against the self-signed cert")
	}
}
