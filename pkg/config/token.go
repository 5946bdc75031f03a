package config

import (
	"strings"

	"github.com/spf13/viper"
)

// ResolveToken returns the value of the first non-empty environment variable
// in names
func ResolveToken(names []string) string {
	if len(names) == 0 {
		names = DefaultTokenEnv
	}

	v := viper.New()
	if err := v.BindEnv(append([]string{"token"}, names...)...); err != nil {
		return ""
	}
	return strings.TrimSpace(v.GetString("token"))
}
