package convert

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrUnsupported marks configurations that carry nothing convertible: no
// proxy outbound, an unrecognized protocol, or missing server/user data.
// Anything else returned by an encoder is a data error (present but
// malformed fields).
var ErrUnsupported = errors.New("unsupported protocol or missing data")

// vnextSettings is the outbound settings shape shared by VLESS and VMess.
type vnextSettings struct {
	Vnext []vnextServer `json:"vnext"`
}

type vnextServer struct {
	Address string      `json:"address"`
	Port    any         `json:"port"`
	Users   []vnextUser `json:"users"`
}

type vnextUser struct {
	ID         any `json:"id"`
	Encryption any `json:"encryption"`
	Flow       any `json:"flow"`
	AlterID    any `json:"alterId"`
	Security   any `json:"security"`
}

// serverSettings is the outbound settings shape shared by Trojan and
// Shadowsocks.
type serverSettings struct {
	Servers []serverEntry `json:"servers"`
}

type serverEntry struct {
	Address  string `json:"address"`
	Port     any    `json:"port"`
	Password any    `json:"password"`
	Method   any    `json:"method"`
}

// first returns the leading element of a slice. Every encoder reads only
// element 0 of vnext/users/servers; multi-server descriptors are out of
// scope, and a missing list and an empty list behave identically.
func first[T any](s []T) (T, bool) {
	if len(s) == 0 {
		var zero T
		return zero, false
	}
	return s[0], true
}

func encodeVLESS(ob *Outbound, name string) (string, error) {
	var settings vnextSettings
	if err := json.Unmarshal(ob.Settings, &settings); err != nil {
		return "", fmt.Errorf("vless settings: %w", err)
	}
	server, ok := first(settings.Vnext)
	if !ok {
		return "", ErrUnsupported
	}
	user, ok := first(server.Users)
	if !ok {
		return "", ErrUnsupported
	}
	port, err := asPort(server.Port)
	if err != nil {
		return "", fmt.Errorf("vless server: %w", err)
	}

	var params Params
	params.Set("encryption", asString(user.Encryption))
	params.Set("flow", asString(user.Flow))
	params.Merge(transportParams(ob.StreamSettings))

	return fmt.Sprintf("vless://%s@%s:%d?%s#%s",
		asString(user.ID), server.Address, port, params.Encode(), url.QueryEscape(name)), nil
}

// vmessPayload is the v2rayN-style JSON document embedded in vmess://
// links. Field order is part of the wire format: clients compare the
// base64 text byte for byte, so this stays a struct rather than a map.
type vmessPayload struct {
	V    string `json:"v"`
	PS   string `json:"ps"`
	Add  string `json:"add"`
	Port int    `json:"port"`
	ID   string `json:"id"`
	Aid  int    `json:"aid"`
	Scy  string `json:"scy"`
	Net  string `json:"net"`
	Type string `json:"type"`
	Host string `json:"host"`
	Path string `json:"path"`
	TLS  string `json:"tls"`
	SNI  string `json:"sni"`
	ALPN string `json:"alpn"`
	FP   string `json:"fp"`
}

func encodeVMess(ob *Outbound, name string) (string, error) {
	var settings vnextSettings
	if err := json.Unmarshal(ob.Settings, &settings); err != nil {
		return "", fmt.Errorf("vmess settings: %w", err)
	}
	server, ok := first(settings.Vnext)
	if !ok {
		return "", ErrUnsupported
	}
	user, ok := first(server.Users)
	if !ok {
		return "", ErrUnsupported
	}
	port, err := asPort(server.Port)
	if err != nil {
		return "", fmt.Errorf("vmess server: %w", err)
	}

	params := transportParams(ob.StreamSettings)
	payload := vmessPayload{
		V:    "2",
		PS:   name,
		Add:  server.Address,
		Port: port,
		// An absent user id is tolerated here: v2rayN accepts such
		// payloads, and rejecting them would drop otherwise valid configs.
		ID:   asString(user.ID),
		Aid:  asIntDefault(user.AlterID, 0),
		Scy:  stringDefault(asString(user.Security), "auto"),
		Net:  params.Get("type"),
		Type: stringDefault(params.Get("headerType"), "none"),
		Host: params.Get("host"),
		Path: params.Get("path"),
		SNI:  params.Get("sni"),
		ALPN: params.Get("alpn"),
		FP:   params.Get("fp"),
	}
	if params.Get("security") == "tls" {
		payload.TLS = "tls"
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("vmess payload: %w", err)
	}
	return "vmess://" + base64.StdEncoding.EncodeToString(raw), nil
}

func encodeTrojan(ob *Outbound, name string) (string, error) {
	var settings serverSettings
	if err := json.Unmarshal(ob.Settings, &settings); err != nil {
		return "", fmt.Errorf("trojan settings: %w", err)
	}
	server, ok := first(settings.Servers)
	if !ok {
		return "", ErrUnsupported
	}
	port, err := asPort(server.Port)
	if err != nil {
		return "", fmt.Errorf("trojan server: %w", err)
	}

	params := transportParams(ob.StreamSettings)
	return fmt.Sprintf("trojan://%s@%s:%d?%s#%s",
		asString(server.Password), server.Address, port, params.Encode(), url.QueryEscape(name)), nil
}

func encodeShadowsocks(ob *Outbound, name string) (string, error) {
	var settings serverSettings
	if err := json.Unmarshal(ob.Settings, &settings); err != nil {
		return "", fmt.Errorf("shadowsocks settings: %w", err)
	}
	server, ok := first(settings.Servers)
	if !ok {
		return "", ErrUnsupported
	}
	port, err := asPort(server.Port)
	if err != nil {
		return "", fmt.Errorf("shadowsocks server: %w", err)
	}

	// SIP002 userinfo: base64("method:password"). Shadowsocks links carry
	// no transport query string.
	userinfo := base64.StdEncoding.EncodeToString(
		[]byte(asString(server.Method) + ":" + asString(server.Password)))
	return fmt.Sprintf("ss://%s@%s:%d#%s",
		userinfo, server.Address, port, url.QueryEscape(name)), nil
}

// asPort coerces the loosely typed port field. Numbers and numeric
// strings are accepted; anything else is a data error rather than a
// silently broken link.
func asPort(v any) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("port %q is not numeric", t)
		}
		return n, nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("port %q is not numeric", t.String())
		}
		return int(n), nil
	case nil:
		return 0, errors.New("port is missing")
	default:
		return 0, fmt.Errorf("port has unexpected type %T", v)
	}
}

// asIntDefault coerces numeric-ish values, falling back to def.
func asIntDefault(v any, def int) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

func stringDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
