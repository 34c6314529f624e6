package davclient

import (
	"net/http"
	"strings"
)

type ServerType string

const (
	ServerTypeNextcloud ServerType = "nextcloud"
	ServerTypeOwncloud  ServerType = "owncloud"
	ServerTypeApache    ServerType = "apache"
	ServerTypeNginx     ServerType = "nginx"
	ServerTypeGeneric   ServerType = "generic"
)

func (s ServerType) String() string {
	return string(s)
}

var serverHeaderVendors = []ServerType{
	ServerTypeNextcloud,
	ServerTypeOwncloud,
	ServerTypeApache,
	ServerTypeNginx,
}

var poweredByVendors = []ServerType{
	ServerTypeNextcloud,
	ServerTypeOwncloud,
}

func matchVendor(value string, vendors []ServerType) (ServerType, bool) {
	value = strings.ToLower(value)
	if len(value) == 0 {
		return "", false
	}
	for _, v := range vendors {
		if strings.Contains(value, string(v)) {
			return v, true
		}
	}
	return "", false
}

// DetectServerType guesses the server implementation from response headers.
// The result is advisory only.
func DetectServerType(h http.Header) ServerType {
	if st, ok := matchVendor(h.Get("Server"), serverHeaderVendors); ok {
		return st
	}
	if st, ok := matchVendor(h.Get("X-Powered-By"), poweredByVendors); ok {
		return st
	}
	if len(h.Values("X-OC-Version")) > 0 {
		return ServerTypeOwncloud
	}
	return ServerTypeGeneric
}
