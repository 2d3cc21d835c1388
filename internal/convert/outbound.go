package convert

import "encoding/json"

// Config is one Xray client configuration. Everything beyond the display
// name and the outbound list is ignored.
type Config struct {
	Remarks   string     `json:"remarks"`
	Outbounds []Outbound `json:"outbounds"`
}

// Outbound is one egress rule. Settings stays raw until the protocol
// encoder knows which shape to decode it into.
type Outbound struct {
	Protocol       string          `json:"protocol"`
	Tag            string          `json:"tag"`
	Settings       json.RawMessage `json:"settings"`
	StreamSettings *StreamSettings `json:"streamSettings"`
}

// nonProxyProtocols are routing pseudo-outbounds that never point at a
// remote proxy server.
var nonProxyProtocols = map[string]bool{
	"freedom":   true,
	"blackhole": true,
	"dns":       true,
}

// selectOutbound picks the outbound to convert: the first element whose
// tag is "proxy", or whose protocol is a real proxy protocol. The tag
// test wins, so a freedom outbound tagged "proxy" is still selected (and
// then rejected by the encoder dispatch as unsupported).
func selectOutbound(outbounds []Outbound) *Outbound {
	for i := range outbounds {
		ob := &outbounds[i]
		if ob.Tag == "proxy" || !nonProxyProtocols[ob.Protocol] {
			return ob
		}
	}
	return nil
}

// encodeConfig converts one configuration into a share link using the
// encoder matching the selected outbound's protocol.
func encodeConfig(cfg *Config, name string) (string, error) {
	ob := selectOutbound(cfg.Outbounds)
	if ob == nil {
		return "", ErrUnsupported
	}

	switch ob.Protocol {
	case "vless":
		return encodeVLESS(ob, name)
	case "vmess":
		return encodeVMess(ob, name)
	case "trojan":
		return encodeTrojan(ob, name)
	case "shadowsocks", "ss":
		return encodeShadowsocks(ob, name)
	default:
		return "", ErrUnsupported
	}
}
