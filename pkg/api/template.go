package api

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

// Notifier is the slice of the reporter surface the resolver needs for its
// non-fatal diagnostics.
type Notifier interface {
	Log(msg string)
	Error(err error)
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// RenderStartURL substitutes `{{ NAME }}` placeholders in a start URL
// template. The lookup context is the process environment merged with
// reserved keys derived from the test's configured request URL; reserved keys
// shadow same-named environment variables. Placeholders that resolve to
// nothing are left verbatim.
func RenderStartURL(template, testURL string, n Notifier) string {
	ctx := templateContext(testURL, n)
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := ctx[name]; ok {
			return v
		}
		return m
	})
}

func templateContext(testURL string, n Notifier) map[string]string {
	ctx := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			ctx[kv[:i]] = kv[i+1:]
		}
	}

	u, err := url.Parse(testURL)
	if err != nil || u.Host == "" {
		if n != nil {
			n.Error(fmt.Errorf("cannot parse test URL %q, only environment variables are available for the start URL template", testURL))
		}
		return ctx
	}

	reserved := map[string]string{
		"URL":      testURL,
		"HOST":     u.Host,
		"HOSTNAME": u.Hostname(),
		"ORIGIN":   u.Scheme + "://" + u.Host,
		"PROTOCOL": u.Scheme + ":",
		"PORT":     u.Port(),
		"PATHNAME": u.Path,
	}
	if u.RawQuery != "" {
		reserved["PARAMS"] = "?" + u.RawQuery
	} else {
		reserved["PARAMS"] = ""
	}
	if u.Fragment != "" {
		reserved["HASH"] = "#" + u.Fragment
	} else {
		reserved["HASH"] = ""
	}

	if sub, domain, ok := splitDomain(u.Hostname()); ok {
		reserved["SUBDOMAIN"] = sub
		reserved["DOMAIN"] = domain
	} else {
		reserved["DOMAIN"] = u.Hostname()
	}

	for k, v := range reserved {
		if _, clash := ctx[k]; clash && n != nil {
			n.Log(fmt.Sprintf("the environment variable %s is shadowed by the URL-derived value in the start URL template", k))
		}
		ctx[k] = v
	}
	return ctx
}

// splitDomain removes the left-most label of a hostname when the hostname has
// at least three labels and a plausible TLD (2 to 5 characters).
func splitDomain(hostname string) (subdomain, domain string, ok bool) {
	labels := strings.Split(hostname, ".")
	if len(labels) < 3 {
		return "", "", false
	}
	if !tldRe.MatchString(labels[len(labels)-1]) {
		return "", "", false
	}
	return labels[0], strings.Join(labels[1:], "."), true
}

var tldRe = regexp.MustCompile(`^[a-zA-Z]{2,5}$`)
