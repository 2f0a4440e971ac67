package limiters

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return "gcr"
	}
	return prefix
}
