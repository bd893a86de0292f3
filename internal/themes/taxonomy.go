package themes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FallbackTheme labels reviews whose keywords match no taxonomy entry.
const FallbackTheme = "other"

// Theme pairs a theme identifier with its trigger terms. Matching is
// exact membership against extracted keywords; inflections or synonyms
// missing from the list deliberately fall through to the catch-all.
type Theme struct {
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms"`
}

// Taxonomy is the fixed, ordered theme-to-triggers mapping. Order
// determines the order of assigned labels.
type Taxonomy []Theme

// DefaultTaxonomy returns the built-in seven-category banking taxonomy.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		{Name: "transaction_issues", Terms: []string{
			"transfer", "transaction", "payment", "send", "receive", "fail",
			"stuck", "pending", "delay", "timeout", "amount", "money", "fund",
			"disappear", "deduct", "balance", "reversal", "bill", "utility",
			"failed transaction", "money not sent", "payment pending",
		}},
		{Name: "login_authentication", Terms: []string{
			"login", "password", "authenticate", "signin", "biometric",
			"fingerprint", "face", "id", "verify", "otp", "sms", "code",
			"block", "lock", "access", "unauthorized", "security", "forgot password",
			"cant login", "login problem",
		}},
		{Name: "app_performance", Terms: []string{
			"slow", "crash", "lag", "freeze", "load", "speed", "hang",
			"responsive", "close", "exit", "bug", "error", "problem",
			"update", "version", "install", "compatible", "device", "app crash",
			"too slow", "loading time",
		}},
		{Name: "account_management", Terms: []string{
			"account", "balance", "statement", "detail", "information",
			"history", "activity", "check", "view", "update", "change",
			"personal", "data", "profile", "security", "privacy", "account balance",
			"transaction history",
		}},
		{Name: "customer_support", Terms: []string{
			"support", "help", "response", "service", "assistance",
			"contact", "call", "email", "team", "resolve", "complaint",
			"agent", "representative", "wait", "time", "hour", "day", "poor support",
			"no response",
		}},
		{Name: "ui_ux_design", Terms: []string{
			"interface", "design", "navigate", "layout", "user", "experience",
			"easy", "simple", "improve", "look", "feel", "intuitive", "button",
			"menu", "option", "feature", "function", "tool", "section", "tab",
			"user interface", "easy to use",
		}},
		{Name: "service_features", Terms: []string{
			"feature", "request", "add", "should", "could", "would",
			"want", "need", "missing", "suggest", "include", "wish",
			"allow", "option", "function", "mobile banking", "app",
			"digital", "online", "service", "notification", "alert",
			"new feature", "add feature",
		}},
	}
}

// LoadTaxonomy reads a taxonomy override from a YAML file. An empty
// path returns the built-in taxonomy.
func LoadTaxonomy(path string) (Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(raw, &tax); err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}
	if len(tax) == 0 {
		return nil, fmt.Errorf("taxonomy %s defines no themes", path)
	}
	return tax, nil
}

// Assign returns every theme whose trigger terms intersect the keyword
// set. No weighting, no precedence: plain OR over terms. When nothing
// matches, the single fallback theme is assigned, so the result is
// never empty.
func (t Taxonomy) Assign(keywords []string) []string {
	present := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		present[kw] = struct{}{}
	}

	var assigned []string
	for _, theme := range t {
		for _, term := range theme.Terms {
			if _, ok := present[term]; ok {
				assigned = append(assigned, theme.Name)
				break
			}
		}
	}

	if len(assigned) == 0 {
		return []string{FallbackTheme}
	}
	return assigned
}
