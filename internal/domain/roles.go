package domain

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Role string

const (
	RoleAndroidDeveloper   Role = "android-developer"
	RoleEngineeringManager Role = "engineering-manager"
	RoleAIEngineer         Role = "artificial-intelligence-engineer"
	RoleFullStackEngineer  Role = "full-stack-engineer"
)

// DefaultRole is selected when a view is mounted.
const DefaultRole = RoleAndroidDeveloper

var ErrUnknownRole = errors.New("unknown role")

// roles is the single ordered source for the selector, labels and validation.
var roles = []Role{
	RoleAndroidDeveloper,
	RoleEngineeringManager,
	RoleAIEngineer,
	RoleFullStackEngineer,
}

// Roles returns the selectable roles in display order.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

func ParseRole(s string) (Role, error) {
	for _, r := range roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Label renders the identifier for humans: "full-stack-engineer" becomes
// "Full Stack Engineer". Only the first letter of each word is touched.
func (r Role) Label() string {
	// Casers keep state, so build one per call.
	c := cases.Title(language.English, cases.NoLower)
	words := strings.Split(string(r), "-")
	for i, w := range words {
		words[i] = c.String(w)
	}
	return strings.Join(words, " ")
}

func (r Role) String() string { return string(r) }
