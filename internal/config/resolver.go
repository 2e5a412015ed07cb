package config

import (
	_ "embed"
	"os"
	"strings"

	"denuncias-go/internal/logger"

	"github.com/joho/godotenv"
)

// PlaceholderAPIKey marks a bundled key the deployer never filled in.
const PlaceholderAPIKey = "PEGA_TU_API_KEY_AQUI"

// embeddedDefaults is the bundled credential layer, compiled into the binary.
//
//go:embed defaults.env
var embeddedDefaults string

// Effective is the resolved credential pair. Empty string means absent.
type Effective struct {
	APIKey    string
	ScriptURL string
}

func (e Effective) HasAPIKey() bool    { return e.APIKey != "" }
func (e Effective) HasScriptURL() bool { return e.ScriptURL != "" }

// Resolve merges the two credential sources field by field.
//
// A static value wins when it is set and, for the API key, is not the
// placeholder. Otherwise the persisted value is used, which may be empty.
func Resolve(static, persisted Values) Effective {
	eff := Effective{
		APIKey:    persisted.APIKey,
		ScriptURL: persisted.ScriptURL,
	}
	if staticKeyUsable(static.APIKey) {
		eff.APIKey = static.APIKey
	}
	if static.ScriptURL != "" {
		eff.ScriptURL = static.ScriptURL
	}
	return eff
}

func staticKeyUsable(key string) bool {
	return key != "" && key != PlaceholderAPIKey
}

// StaticValues returns the bundled defaults overlaid by the process
// environment (GEMINI_API_KEY, GOOGLE_SCRIPT_URL).
func StaticValues() Values {
	v := Values{}
	if m, err := godotenv.Unmarshal(embeddedDefaults); err == nil {
		v.APIKey = strings.TrimSpace(m[KeyAPIKey])
		v.ScriptURL = strings.TrimSpace(m[KeyScriptURL])
	}
	if env := strings.TrimSpace(os.Getenv(KeyAPIKey)); env != "" {
		v.APIKey = env
	}
	if env := strings.TrimSpace(os.Getenv(KeyScriptURL)); env != "" {
		v.ScriptURL = env
	}
	return v
}

// Resolver resolves credentials on every call so a Save is visible to the
// next request without a restart.
type Resolver struct {
	static func() Values
	store  *Store
	log    *logger.Logger
}

// NewResolver uses StaticValues as the static layer.
func NewResolver(store *Store, log *logger.Logger) *Resolver {
	return &Resolver{static: StaticValues, store: store, log: log.Component("config")}
}

// NewResolverWithStatic pins the static layer. Used by tests and embedders.
func NewResolverWithStatic(static Values, store *Store, log *logger.Logger) *Resolver {
	return &Resolver{
		static: func() Values { return static },
		store:  store,
		log:    log.Component("config"),
	}
}

// Resolve never fails. An unreadable store counts as empty.
func (r *Resolver) Resolve() Effective {
	persisted, err := r.store.Load()
	if err != nil {
		r.log.WithError(err).Warn("persisted settings unreadable, ignoring")
		persisted = Values{}
	}
	return Resolve(r.static(), persisted)
}

// UsingStaticKey reports whether the bundled key overrides the stored one.
func (r *Resolver) UsingStaticKey() bool {
	return staticKeyUsable(r.static().APIKey)
}

// Save trims both inputs and persists the non-empty ones.
func (r *Resolver) Save(apiKey, scriptURL string) error {
	v := Values{
		APIKey:    strings.TrimSpace(apiKey),
		ScriptURL: strings.TrimSpace(scriptURL),
	}
	if v.APIKey == "" && v.ScriptURL == "" {
		return nil
	}
	if err := r.store.Save(v); err != nil {
		return err
	}
	r.log.WithField("api_key_saved", v.APIKey != "").
		WithField("script_url_saved", v.ScriptURL != "").
		Info("settings saved")
	return nil
}
