package domain

import "strings"

const (
	CollectionBlog      = "blog"
	CollectionPortfolio = "portfolio"
)

func IsValidCollectionName(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return true
}
