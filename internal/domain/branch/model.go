package branch

import (
	"strings"
	"time"
)

// Root is the path of the branch every other branch descends from.
const Root = "MAIN"

// Separator joins branch path segments.
const Separator = "/"

// Branch is a node in the local branch tree.
type Branch struct {
	Path     string `json:"path"`
	Parent   string `json:"parent,omitempty"`
	BaseTick int64  `json:"base_tick"`
	HeadTick int64  `json:"head_tick"`

	// PromotedTick is the tick of the last promotion of this branch into
	// its parent. Own edits after it are still pending.
	PromotedTick int64     `json:"promoted_tick"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsRoot reports whether the branch is MAIN.
func (b *Branch) IsRoot() bool {
	return b.Path == Root
}

// ParentPath returns the parent of path, or "" for the root.
func ParentPath(path string) string {
	i := strings.LastIndex(path, Separator)
	if i < 0 {
		return ""
	}
	return path[:i]
}

// Ancestors lists the ancestors of path from the root down, excluding path itself.
func Ancestors(path string) []string {
	var out []string
	for p := ParentPath(path); p != ""; p = ParentPath(p) {
		out = append([]string{p}, out...)
	}
	return out
}

// IsParentOf reports whether parent is the direct parent of child.
func IsParentOf(parent, child string) bool {
	return parent != "" && ParentPath(child) == parent
}

// ValidatePath checks that path is rooted at MAIN and has no empty segments.
func ValidatePath(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	segments := strings.Split(path, Separator)
	if segments[0] != Root {
		return ErrInvalidPath
	}
	for _, seg := range segments[1:] {
		if strings.TrimSpace(seg) == "" || strings.ContainsAny(seg, " \t\n") {
			return ErrInvalidPath
		}
	}
	return nil
}

// Commit is one tick in the branch tree's history.
type Commit struct {
	Tick       int64     `json:"tick"`
	ID         string    `json:"id"`
	BranchPath string    `json:"branch_path"`
	Kind       string    `json:"kind"`
	SourcePath string    `json:"source_path,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
