package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIDHeader é o header com o identificador explícito do cliente.
const ClientIDHeader = "x-client-id"

type KeyFunc func(r *http.Request) string

// ClientKeyFunc prefere o header keyHeader (se presente e não vazio) e cai para
// o endereço de origem. O valor do header não é validado: qualquer string vira
// uma chave opaca.
func ClientKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	origin := OriginKeyFunc(trustXFF)
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}
		return origin(r)
	}
}

// OriginKeyFunc usa só o endereço de origem da conexão.
func OriginKeyFunc(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		addr := strings.TrimSpace(r.RemoteAddr)
		host, _, err := net.SplitHostPort(addr)
		if err == nil && host != "" {
			return host
		}
		if addr != "" {
			return addr
		}
		return "unknown"
	}
}
