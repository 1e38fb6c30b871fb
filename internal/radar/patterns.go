// Package radar performs two kinds of risk analysis on a hosted bot: a
// static pattern scan over its uploaded source before launch, and a
// runtime quota check against its sampled resource usage. Pattern tables
// are data, not code, following the marker-table style used for dependency
// inference.
package radar

import "regexp"

// Category is one scoring bucket a static match contributes to.
type Category string

const (
	CategoryResourceExtraction Category = "resource_extraction"
	CategoryNetworkAbuse       Category = "network_abuse"
	CategoryResourceExhaustion Category = "resource_exhaustion"
	CategoryObfuscation        Category = "obfuscation"
)

// Rule pairs a compiled pattern with the category and score it contributes
// on a match.
type Rule struct {
	Category Category
	Points   int
	Pattern  *regexp.Regexp
}

// resourceExtractionKeywords are mining/cryptocurrency terms, hashing/pool
// vocabulary, and GPU vocabulary, each its own rule so that a file naming
// several of them scores a match per keyword rather than one match for
// the whole category.
var resourceExtractionKeywords = []string{
	"xmrig", "cryptonight", "stratum\\+tcp", "monero", "mining", "hashrate",
	"nicehash", "cpuminer", "randomx", "asic", "nvidia-smi", "cuda device",
	"gpu hash", "coinhive", "minergate", "ethermine", "nanopool",
}

var ResourceExtractionRules = buildKeywordRules(CategoryResourceExtraction, 10, resourceExtractionKeywords)

// networkAbuseKeywords are flood/attack/proxy/botnet vocabulary.
var networkAbuseKeywords = []string{
	"ddos", "syn flood", "udp flood", "slowloris", "packet flood",
	"amplification attack", "botnet", "proxy grabber", "socks5 proxy list",
	"credential stuffing", "brute ?force login",
}

var NetworkAbuseRules = buildKeywordRules(CategoryNetworkAbuse, 10, networkAbuseKeywords)

// buildKeywordRules compiles one word-bounded, case-insensitive rule per
// keyword so independent keyword matches in the same file add independently
// instead of being collapsed into a single alternation match.
func buildKeywordRules(category Category, points int, keywords []string) []Rule {
	rules := make([]Rule, len(keywords))
	for i, kw := range keywords {
		rules[i] = Rule{category, points, regexp.MustCompile(`(?i)\b(` + kw + `)\b`)}
	}
	return rules
}

// ResourceExhaustionRules catch code shapes rather than vocabulary:
// unbounded loops, fork bombs, repeated unbounded allocation.
var ResourceExhaustionRules = []Rule{
	{CategoryResourceExhaustion, 10, regexp.MustCompile(`(?i)while\s*\(?\s*true\s*\)?\s*:`)},
	{CategoryResourceExhaustion, 10, regexp.MustCompile(`(?i)while\s*\(\s*true\s*\)\s*\{`)},
	{CategoryResourceExhaustion, 10, regexp.MustCompile(`(?i)for\s*\(;;\)`)},
	{CategoryResourceExhaustion, 10, regexp.MustCompile(`\bos\.fork\(\)`)},
	{CategoryResourceExhaustion, 10, regexp.MustCompile(`(?i)\bchild_process\.fork\(`)},
	{CategoryResourceExhaustion, 10, regexp.MustCompile(`(?i)\[0\]\s*\*\s*\d{7,}`)},
}

// ObfuscationRules catch dynamic-eval invocation and escape-heavy literals.
var ObfuscationRules = []Rule{
	{CategoryObfuscation, 15, regexp.MustCompile(`(?i)\beval\s*\(`)},
	{CategoryObfuscation, 15, regexp.MustCompile(`(?i)\bexec\s*\(\s*compile\s*\(`)},
	{CategoryObfuscation, 15, regexp.MustCompile(`(?i)\bnew Function\s*\(`)},
	{CategoryObfuscation, 15, regexp.MustCompile(`(?:\\x[0-9a-fA-F]{2}){8,}`)},
	{CategoryObfuscation, 15, regexp.MustCompile(`(?:\\u[0-9a-fA-F]{4}){8,}`)},
}

// AllRules is every rule group flattened, in scoring order.
var AllRules = func() []Rule {
	var all []Rule
	all = append(all, ResourceExtractionRules...)
	all = append(all, NetworkAbuseRules...)
	all = append(all, ResourceExhaustionRules...)
	all = append(all, ObfuscationRules...)
	return all
}()

const (
	longFileLines   = 10000
	longFilePenalty = 5
	suspiciousScore = 20
)
