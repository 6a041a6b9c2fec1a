package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// scopeLevel is how deep a command needs its org/space/instance scope.
type scopeLevel int

const (
	scopeOrg scopeLevel = iota + 1
	scopeSpace
	scopeInstance
)

// scopeFlags holds --org/--space/--instance values.
type scopeFlags struct {
	org      string
	space    string
	instance string
}

func addScopeFlags(cmd *cobra.Command, flags *scopeFlags, level scopeLevel) {
	cmd.Flags().StringVarP(&flags.org, "org", "o", "", "organization slug (default: selected organization)")

	if level >= scopeSpace {
		cmd.Flags().StringVarP(&flags.space, "space", "s", "", "space slug (default: selected space)")
	}

	if level >= scopeInstance {
		cmd.Flags().StringVarP(&flags.instance, "instance", "i", "", "instance slug (default: selected instance)")
	}
}

// scope is a resolved org/space/instance.
type scope struct {
	Org      string
	Space    string
	Instance string
}

// resolveScope fills each level from its flag, then from the persisted
// selection, and fails naming the first missing level up to level.
func (c *Context) resolveScope(flags scopeFlags, level scopeLevel) (scope, error) {
	s := c.selection(flags)

	switch {
	case s.Org == "":
		return s, nuvolos.ErrOrgRequired
	case level >= scopeSpace && s.Space == "":
		return s, nuvolos.ErrSpaceRequired
	case level >= scopeInstance && s.Instance == "":
		return s, nuvolos.ErrInstanceRequired
	}

	return s, nil
}

// selection merges flags over the persisted selection. A flag at one level
// discards the persisted levels below it, since those belong to another
// parent.
func (c *Context) selection(flags scopeFlags) scope {
	s := scope{
		Org:      c.Viper.GetString(keyOrg),
		Space:    c.Viper.GetString(keySpace),
		Instance: c.Viper.GetString(keyInstance),
	}

	if flags.org != "" && flags.org != s.Org {
		s = scope{Org: flags.org}
	}

	if flags.space != "" && flags.space != s.Space {
		s.Space = flags.space
		s.Instance = ""
	}

	if flags.instance != "" {
		s.Instance = flags.instance
	}

	return s
}

func (s scope) appRef(app string) nuvolos.AppRef {
	return nuvolos.AppRef{Org: s.Org, Space: s.Space, Instance: s.Instance, App: app}
}

func (s scope) String() string {
	switch {
	case s.Instance != "":
		return fmt.Sprintf("%s/%s/%s", s.Org, s.Space, s.Instance)
	case s.Space != "":
		return fmt.Sprintf("%s/%s", s.Org, s.Space)
	default:
		return s.Org
	}
}

// isEmpty reports whether no level is known at all.
func (s scope) isEmpty() bool {
	return s.Org == "" && s.Space == "" && s.Instance == ""
}
