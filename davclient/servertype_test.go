package davclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectServerType(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		expect ServerType
	}{
		{"empty", nil, ServerTypeGeneric},
		{"nextcloud beats apache", map[string]string{"Server": "Apache/2.4 Nextcloud"}, ServerTypeNextcloud},
		{"owncloud", map[string]string{"Server": "ownCloud"}, ServerTypeOwncloud},
		{"apache", map[string]string{"Server": "Apache/2.4.41 (Ubuntu)"}, ServerTypeApache},
		{"nginx", map[string]string{"Server": "nginx/1.25"}, ServerTypeNginx},
		{"server wins over powered by", map[string]string{"Server": "nginx", "X-Powered-By": "Nextcloud"}, ServerTypeNginx},
		{"powered by nextcloud", map[string]string{"Server": "caddy", "X-Powered-By": "NEXTCLOUD"}, ServerTypeNextcloud},
		{"powered by owncloud", map[string]string{"X-Powered-By": "ownCloud 10"}, ServerTypeOwncloud},
		{"powered by php is ignored", map[string]string{"X-Powered-By": "PHP/8.2"}, ServerTypeGeneric},
		{"oc version", map[string]string{"X-OC-Version": "10.0"}, ServerTypeOwncloud},
		{"powered by wins over oc version", map[string]string{"X-Powered-By": "Nextcloud", "X-OC-Version": "1"}, ServerTypeNextcloud},
		{"unknown server", map[string]string{"Server": "lighttpd"}, ServerTypeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.header {
				h.Set(k, v)
			}
			assert.Equal(t, tt.expect, DetectServerType(h))
		})
	}
}
