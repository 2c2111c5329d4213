package source

import (
	"fmt"
	"strings"
)

const userPrefix = "USER_"

// UserBlock is one USER_<i>_* group before validation.
type UserBlock struct {
	Index   int
	Email   string
	Aliases []string
	Links   []LinkBlock
}

// LinkBlock is one USER_<i>_LINK_<j>_* group before validation. Href and Type
// are empty when their keys are absent.
type LinkBlock struct {
	User  int
	Index int
	Rel   string
	Href  string
	Type  string
}

func EmailKey(user int) string   { return fmt.Sprintf("USER_%d_EMAIL", user) }
func AliasesKey(user int) string { return fmt.Sprintf("USER_%d_ALIASES", user) }
func RelKey(user, link int) string {
	return fmt.Sprintf("USER_%d_LINK_%d_REL", user, link)
}
func HrefKey(user, link int) string {
	return fmt.Sprintf("USER_%d_LINK_%d_HREF", user, link)
}
func TypeKey(user, link int) string {
	return fmt.Sprintf("USER_%d_LINK_%d_TYPE", user, link)
}

// Blocks reconstructs the user/link structure. User indices start at 1 and
// stop at the first index without an email; link indices restart at 1 for
// each user and stop at the first index without a rel. Values past a gap are
// never read.
func (kv KeyValues) Blocks() []UserBlock {
	var users []UserBlock
	for i := 1; ; i++ {
		email, ok := kv.Value(EmailKey(i))
		if !ok {
			return users
		}

		u := UserBlock{Index: i, Email: email}
		if raw, ok := kv.Value(AliasesKey(i)); ok {
			u.Aliases = strings.Split(raw, ",")
		}
		u.Links = kv.links(i)
		users = append(users, u)
	}
}

func (kv KeyValues) links(user int) []LinkBlock {
	var links []LinkBlock
	for j := 1; ; j++ {
		rel, ok := kv.Value(RelKey(user, j))
		if !ok {
			return links
		}
		href, _ := kv.Value(HrefKey(user, j))
		typ, _ := kv.Value(TypeKey(user, j))
		links = append(links, LinkBlock{User: user, Index: j, Rel: rel, Href: href, Type: typ})
	}
}
