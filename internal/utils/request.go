package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func DecodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// DecodeAndValidate décode le corps JSON puis applique les tags validate
func DecodeAndValidate(r *http.Request, dest interface{}) error {
	if err := DecodeJSON(r, dest); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return Validate(dest)
}

// Validate vérifie une struct et retourne un message lisible
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed on '%s'", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, ", "))
}

func GetToken(r *http.Request) (string, error) {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return "", fmt.Errorf("missing token")
	}
	return token, nil
}

// Pagination lit page et pageSize avec des bornes
func Pagination(r *http.Request, defaultSize, maxSize int) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

var trustedProxies atomic.Pointer[[]netip.Prefix]

// SetTrustedProxies déclare les proxys (CIDR ou IP seule) dont X-Forwarded-For est lu.
// Une liste vide revient à ignorer l'en-tête.
func SetTrustedProxies(entries []string) error {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return fmt.Errorf("proxy de confiance invalide %q", e)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	trustedProxies.Store(&prefixes)
	return nil
}

func isTrustedProxy(ip string) bool {
	prefixes := trustedProxies.Load()
	if prefixes == nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range *prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP retourne l'IP du client. X-Forwarded-For n'est lu que si la connexion
// vient d'un proxy de confiance : on garde alors le saut le plus à droite qui
// n'est pas un proxy, les sauts à sa gauche étant écrits par le client.
func ClientIP(r *http.Request) string {
	remote, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remote = r.RemoteAddr
	}
	if !isTrustedProxy(remote) {
		return remote
	}

	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(v, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if _, err := netip.ParseAddr(hops[i]); err != nil {
			return remote
		}
		if !isTrustedProxy(hops[i]) {
			return hops[i]
		}
	}
	if len(hops) > 0 {
		return hops[0]
	}
	return remote
}
