package convert

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T, raw string) *Config {
	t.Helper()
	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	return &cfg
}

func TestEncodeVLESSReality(t *testing.T) {
	id := uuid.MustParse("b831381d-6324-4d53-ad4f-8cda48b30811").String()
	cfg := parseConfig(t, fmt.Sprintf(`{
		"remarks": "US-1",
		"outbounds": [{
			"protocol": "vless",
			"tag": "proxy",
			"settings": {
				"vnext": [{
					"address": "example.com",
					"port": 443,
					"users": [{"id": %q, "encryption": "none", "flow": "xtls-rprx-vision"}]
				}]
			},
			"streamSettings": {
				"network": "tcp",
				"security": "reality",
				"realitySettings": {
					"serverName": "cdn.example.com",
					"fingerprint": "chrome",
					"publicKey": "pbk-value",
					"shortId": "ab12"
				}
			}
		}]
	}`, id))

	link, err := encodeConfig(cfg, "US-1")
	require.NoError(t, err)
	assert.Equal(t,
		"vless://"+id+"@example.com:443?encryption=none&flow=xtls-rprx-vision&type=tcp&security=reality&sni=cdn.example.com&fp=chrome&pbk=pbk-value&sid=ab12#US-1",
		link)
}

func TestEncodeVMessWebSocketTLS(t *testing.T) {
	id := uuid.MustParse("27848739-7e62-4138-9fd3-098a63964b6b").String()
	cfg := parseConfig(t, fmt.Sprintf(`{
		"remarks": "VM",
		"outbounds": [{
			"protocol": "vmess",
			"tag": "proxy",
			"settings": {
				"vnext": [{
					"address": "vm.example.com",
					"port": 8443,
					"users": [{"id": %q, "alterId": 0}]
				}]
			},
			"streamSettings": {
				"network": "ws",
				"security": "tls",
				"wsSettings": {"path": "/ws", "headers": {"Host": "vm.example.com"}},
				"tlsSettings": {"serverName": "vm.example.com", "fingerprint": "chrome", "alpn": ["h2", "http/1.1"]}
			}
		}]
	}`, id))

	link, err := encodeConfig(cfg, "VM")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "vmess://"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(link, "vmess://"))
	require.NoError(t, err)

	// The payload key order is part of the format.
	assert.Equal(t,
		`{"v":"2","ps":"VM","add":"vm.example.com","port":8443,"id":"`+id+`","aid":0,"scy":"auto","net":"ws","type":"none","host":"vm.example.com","path":"/ws","tls":"tls","sni":"vm.example.com","alpn":"h2,http/1.1","fp":"chrome"}`,
		string(decoded))
}

func TestEncodeVMessDefaults(t *testing.T) {
	cfg := parseConfig(t, `{
		"outbounds": [{
			"protocol": "vmess",
			"settings": {"vnext": [{"address": "1.2.3.4", "port": "10086", "users": [{}]}]}
		}]
	}`)

	link, err := encodeConfig(cfg, "Unnamed")
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(link, "vmess://"))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(decoded, &payload))
	assert.Equal(t, "2", payload["v"])
	assert.Equal(t, "Unnamed", payload["ps"])
	assert.Equal(t, float64(10086), payload["port"])
	assert.Equal(t, "", payload["id"])
	assert.Equal(t, float64(0), payload["aid"])
	assert.Equal(t, "auto", payload["scy"])
	assert.Equal(t, "tcp", payload["net"])
	assert.Equal(t, "none", payload["type"])
	assert.Equal(t, "", payload["tls"])
}

func TestEncodeTrojanMinimal(t *testing.T) {
	cfg := parseConfig(t, `{
		"remarks": "A",
		"outbounds": [{
			"protocol": "trojan",
			"tag": "proxy",
			"settings": {"servers": [{"address": "1.2.3.4", "port": 443, "password": "pw"}]}
		}]
	}`)

	link, err := encodeConfig(cfg, "A")
	require.NoError(t, err)
	assert.Equal(t, "trojan://pw@1.2.3.4:443?type=tcp&security=none#A", link)
}

func TestEncodeShadowsocks(t *testing.T) {
	cfg := parseConfig(t, `{
		"remarks": "SS Node",
		"outbounds": [{
			"protocol": "shadowsocks",
			"tag": "proxy",
			"settings": {"servers": [{"address": "ss.example.com", "port": 8388, "method": "aes-256-gcm", "password": "secret"}]}
		}]
	}`)

	link, err := encodeConfig(cfg, "SS Node")
	require.NoError(t, err)

	userinfo := base64.StdEncoding.EncodeToString([]byte("aes-256-gcm:secret"))
	assert.Equal(t, "ss://"+userinfo+"@ss.example.com:8388#SS+Node", link)
}

func TestSelectOutboundSkipsRouting(t *testing.T) {
	cfg := parseConfig(t, `{
		"outbounds": [
			{"protocol": "freedom", "tag": "direct"},
			{"protocol": "blackhole", "tag": "block"},
			{"protocol": "trojan", "tag": "egress",
			 "settings": {"servers": [{"address": "1.2.3.4", "port": 443, "password": "pw"}]}}
		]
	}`)

	link, err := encodeConfig(cfg, "B")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "trojan://"))
}

func TestSelectOutboundTagWins(t *testing.T) {
	// A freedom outbound tagged "proxy" is selected first and then fails
	// the protocol dispatch; the later trojan outbound is never reached.
	cfg := parseConfig(t, `{
		"outbounds": [
			{"protocol": "freedom", "tag": "proxy"},
			{"protocol": "trojan", "tag": "egress",
			 "settings": {"servers": [{"address": "1.2.3.4", "port": 443, "password": "pw"}]}}
		]
	}`)

	_, err := encodeConfig(cfg, "C")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEncodeConfigNoOutbounds(t *testing.T) {
	_, err := encodeConfig(&Config{}, "empty")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEncodeEmptyServerList(t *testing.T) {
	cfg := parseConfig(t, `{
		"outbounds": [{"protocol": "vless", "tag": "proxy", "settings": {"vnext": []}}]
	}`)
	_, err := encodeConfig(cfg, "D")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEncodeMissingPortIsDataError(t *testing.T) {
	cfg := parseConfig(t, `{
		"outbounds": [{
			"protocol": "trojan",
			"tag": "proxy",
			"settings": {"servers": [{"address": "1.2.3.4", "password": "pw"}]}
		}]
	}`)

	_, err := encodeConfig(cfg, "E")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "port is missing")
}

func TestAsPort(t *testing.T) {
	n, err := asPort(float64(443))
	require.NoError(t, err)
	assert.Equal(t, 443, n)

	n, err = asPort(" 8080 ")
	require.NoError(t, err)
	assert.Equal(t, 8080, n)

	_, err = asPort("eighty")
	assert.Error(t, err)

	_, err = asPort(nil)
	assert.Error(t, err)

	_, err = asPort(true)
	assert.Error(t, err)
}

func TestNameEscapedInFragment(t *testing.T) {
	cfg := parseConfig(t, `{
		"outbounds": [{
			"protocol": "trojan",
			"tag": "proxy",
			"settings": {"servers": [{"address": "1.2.3.4", "port": 443, "password": "pw"}]}
		}]
	}`)

	link, err := encodeConfig(cfg, "HK #1 50%")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(link, "#HK+%231+50%25"))
}
