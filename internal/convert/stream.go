package convert

import (
	"fmt"
	"strconv"
	"strings"
)

// StreamSettings mirrors the Xray streamSettings JSON object. One
// optional settings block exists per transport kind and per security
// kind; only the block matching the declared kind is ever consulted.
// Leaf fields that clients populate inconsistently (strings, numbers,
// arrays) stay loosely typed and go through the coercion helpers below.
type StreamSettings struct {
	Network         string           `json:"network"`
	Security        string           `json:"security"`
	TLSSettings     *TLSSettings     `json:"tlsSettings"`
	RealitySettings *RealitySettings `json:"realitySettings"`
	WSSettings      *WSSettings      `json:"wsSettings"`
	GRPCSettings    *GRPCSettings    `json:"grpcSettings"`
	TCPSettings     *TCPSettings     `json:"tcpSettings"`
	XHTTPSettings   *XHTTPSettings   `json:"xhttpSettings"`
	HTTPSettings    *HTTPSettings    `json:"httpSettings"`
	H2Settings      *HTTPSettings    `json:"h2Settings"`
	QUICSettings    *QUICSettings    `json:"quicSettings"`
	KCPSettings     *KCPSettings     `json:"kcpSettings"`
}

type RealitySettings struct {
	ServerName  any `json:"serverName"`
	Fingerprint any `json:"fingerprint"`
	PublicKey   any `json:"publicKey"`
	ShortID     any `json:"shortId"`
	SpiderX     any `json:"spiderX"`
}

type TLSSettings struct {
	ServerName  any `json:"serverName"`
	Fingerprint any `json:"fingerprint"`
	ALPN        any `json:"alpn"`
}

type WSSettings struct {
	Path    any `json:"path"`
	Headers any `json:"headers"`
}

type GRPCSettings struct {
	ServiceName any `json:"serviceName"`
	Mode        any `json:"mode"`
	Authority   any `json:"authority"`
}

type TCPSettings struct {
	Header any `json:"header"`
}

type XHTTPSettings struct {
	Path any `json:"path"`
	Host any `json:"host"`
	Mode any `json:"mode"`
}

type HTTPSettings struct {
	Path any `json:"path"`
	Host any `json:"host"`
}

type QUICSettings struct {
	Security any `json:"security"`
	Key      any `json:"key"`
	Header   any `json:"header"`
}

type KCPSettings struct {
	Seed   any `json:"seed"`
	Header any `json:"header"`
}

// transportParams flattens stream settings into the canonical share-link
// query parameters. "type" and "security" are always present (defaults
// "tcp"/"none"); every other key appears only when the source field does.
// Unknown network or security kinds simply contribute nothing extra.
func transportParams(ss *StreamSettings) Params {
	network := "tcp"
	security := "none"
	if ss != nil {
		if ss.Network != "" {
			network = ss.Network
		}
		if ss.Security != "" {
			security = ss.Security
		}
	}

	var p Params
	p.Set("type", network)
	p.Set("security", security)
	if ss == nil {
		return p
	}

	switch security {
	case "reality":
		if r := ss.RealitySettings; r != nil {
			p.Set("sni", asString(r.ServerName))
			p.Set("fp", asString(r.Fingerprint))
			p.Set("pbk", asString(r.PublicKey))
			p.Set("sid", asString(r.ShortID))
			p.Set("spx", asString(r.SpiderX))
		}
	case "tls":
		if t := ss.TLSSettings; t != nil {
			p.Set("sni", asString(t.ServerName))
			p.Set("fp", asString(t.Fingerprint))
			p.Set("alpn", joinOrString(t.ALPN))
		}
	}

	switch network {
	case "ws":
		if w := ss.WSSettings; w != nil {
			p.Set("path", asString(w.Path))
			if headers := asMap(w.Headers); headers != nil {
				p.Set("host", asString(headers["Host"]))
			}
		}
	case "grpc":
		if g := ss.GRPCSettings; g != nil {
			p.Set("serviceName", asString(g.ServiceName))
			p.Set("mode", asString(g.Mode))
			p.Set("authority", asString(g.Authority))
		}
	case "tcp":
		if t := ss.TCPSettings; t != nil {
			if header := asMap(t.Header); header != nil {
				p.Set("headerType", asString(header["type"]))
				if request := asMap(header["request"]); request != nil {
					if paths, ok := request["path"].([]any); ok && len(paths) > 0 {
						p.Set("path", asString(paths[0]))
					}
					if headers := asMap(request["headers"]); headers != nil {
						p.Set("host", firstOrString(headers["Host"]))
					}
				}
			}
		}
	case "xhttp":
		if x := ss.XHTTPSettings; x != nil {
			p.Set("path", asString(x.Path))
			p.Set("host", asString(x.Host))
			p.Set("mode", asString(x.Mode))
		}
	case "h2", "http":
		// Configs in the wild name this block either httpSettings or
		// h2Settings; the http-named one wins when both are present.
		block := ss.HTTPSettings
		if block == nil {
			block = ss.H2Settings
		}
		if block != nil {
			p.Set("path", asString(block.Path))
			p.Set("host", firstOrString(block.Host))
		}
	case "quic":
		if q := ss.QUICSettings; q != nil {
			p.Set("quicSecurity", asString(q.Security))
			p.Set("key", asString(q.Key))
			if header := asMap(q.Header); header != nil {
				p.Set("headerType", asString(header["type"]))
			}
		}
	case "kcp":
		if k := ss.KCPSettings; k != nil {
			p.Set("seed", asString(k.Seed))
			if header := asMap(k.Header); header != nil {
				p.Set("headerType", asString(header["type"]))
			}
		}
	}

	return p
}

// asString renders a loosely typed JSON leaf as its string form. nil and
// empty values come back as "", which Params.Set treats as absent.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// firstOrString takes the first element when v is a sequence, otherwise
// stringifies v directly.
func firstOrString(v any) string {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return ""
		}
		return asString(arr[0])
	}
	return asString(v)
}

// joinOrString joins sequence elements with "," (the alpn convention),
// otherwise stringifies v directly.
func joinOrString(v any) string {
	arr, ok := v.([]any)
	if !ok {
		return asString(v)
	}
	parts := make([]string, 0, len(arr))
	for _, e := range arr {
		parts = append(parts, asString(e))
	}
	return strings.Join(parts, ",")
}

func asMap(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m
}
