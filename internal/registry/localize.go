package registry

import (
	"strings"

	"github.com/tidwall/gjson"
)

// LocalizeString looks up "module:path" or a bare path in the default
// module's localization table. A missing key comes back unchanged; objects
// and arrays come back as their JSON text.
func (r *Registry) LocalizeString(key string) string {
	res, ok := r.lookupLocale(key)
	if !ok {
		return key
	}
	return res.String()
}

// HasLocalizationKey reports whether key resolves to any value.
func (r *Registry) HasLocalizationKey(key string) bool {
	_, ok := r.lookupLocale(key)
	return ok
}

func (r *Registry) lookupLocale(key string) (gjson.Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modName, path, ok := strings.Cut(key, ":")
	if !ok {
		modName, path = r.defaultModule, key
	}
	m := r.byName[modName]
	if m == nil || m.locale == nil || path == "" {
		return gjson.Result{}, false
	}
	res := gjson.GetBytes(m.locale, path)
	if !res.Exists() {
		return gjson.Result{}, false
	}
	return res, true
}
