// Package ruleset loads the routing rules that are prepended to every
// converted document.
//
// A rule list is a plain text file with one rule per line. Lines may omit
// the target group, in which case the configured target is inserted:
//
//	# OpenAI
//	DOMAIN-SUFFIX,openai.com
//	IP-CIDR,24.199.123.28/32,no-resolve
//
// becomes
//
//	DOMAIN-SUFFIX,openai.com,OpenAI
//	IP-CIDR,24.199.123.28/32,OpenAI,no-resolve
//
// Lists come from a Source (embedded, file or URL) and are held by a Store,
// which swaps in a new Set atomically on reload. A Watcher reloads file
// sources when they change and a Scheduler refreshes any source on a cron
// schedule.
package ruleset
