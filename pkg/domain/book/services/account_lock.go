package book_services

import "sort"

// DedupeAndOrderAccounts deduplicates accounts and sorts them lexicographically before lock
// acquisition. The source commits locks in input-iteration order (§4.6); this implementation
// sorts instead, documenting a stable order so concurrent writers touching overlapping account
// sets always request their locks in the same order and cannot deadlock against each other (§9).
func DedupeAndOrderAccounts(accounts []string) []string {
	seen := make(map[string]bool, len(accounts))
	unique := make([]string, 0, len(accounts))

	for _, account := range accounts {
		if seen[account] {
			continue
		}
		seen[account] = true
		unique = append(unique, account)
	}

	sort.Strings(unique)
	return unique
}
