// Package probe performs a preflight check of the scrape target.
//
// The probe fetches the predictions page and reports what the scraper is
// about to face: the HTTP status, whether a Cloudflare browser-check
// interstitial is being served, and how many match rows are present. It is a
// diagnostic aid for run failures and extracts no match data.
package probe
