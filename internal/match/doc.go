// Package match provides types and functions for the daily match snapshot.
//
// The match package models the today_matches.json file written by the scraper:
// a scrape_info header plus a list of match records with teams, fixture, league,
// prediction, odds, and recent form. Each match is assigned a deterministic
// SHA1-based key generated from its teams and fixture, enabling reliable
// tracking of additions and removals across runs.
package match
