package section

// itemTitles is the canonical title library for all 25 FDD items, used by
// both the text-scan pass (regex match) and the fuzzy pass (Levenshtein
// ratio against these titles). Titles follow the FTC Franchise Rule's
// standard item captions. Grounded on the teacher's
// pkg/core/fee/section_router.go TableMatcher pattern-library shape
// (one title-pattern set per classified type).
var itemTitles = map[int]string{
	1:  "THE FRANCHISOR AND ANY PARENTS, PREDECESSORS, AND AFFILIATES",
	2:  "BUSINESS EXPERIENCE",
	3:  "LITIGATION",
	4:  "BANKRUPTCY",
	5:  "INITIAL FEES",
	6:  "OTHER FEES",
	7:  "ESTIMATED INITIAL INVESTMENT",
	8:  "RESTRICTIONS ON SOURCES OF PRODUCTS AND SERVICES",
	9:  "FRANCHISEE'S OBLIGATIONS",
	10: "FINANCING",
	11: "FRANCHISOR'S ASSISTANCE, ADVERTISING, COMPUTER SYSTEMS, AND TRAINING",
	12: "TERRITORY",
	13: "TRADEMARKS",
	14: "PATENTS, COPYRIGHTS, AND PROPRIETARY INFORMATION",
	15: "OBLIGATION TO PARTICIPATE IN THE ACTUAL OPERATION OF THE FRANCHISE BUSINESS",
	16: "RESTRICTIONS ON WHAT THE FRANCHISEE MAY SELL",
	17: "RENEWAL, TERMINATION, TRANSFER, AND DISPUTE RESOLUTION",
	18: "PUBLIC FIGURES",
	19: "FINANCIAL PERFORMANCE REPRESENTATIONS",
	20: "OUTLETS AND FRANCHISEE INFORMATION",
	21: "FINANCIAL STATEMENTS",
	22: "CONTRACTS",
	23: "RECEIPTS",
	24: "STATE SPECIFIC ADDENDA",
	25: "EXHIBITS",
}

// textScanPatterns lists case-insensitive substrings recognized per item in
// the text-scan pass (spec.md §4.2 pass 3: "a library of 25 patterns
// covering common titles"). Kept independent of itemTitles since real FDDs
// use looser phrasing than the canonical caption.
var textScanPatterns = map[int][]string{
	1:  {"the franchisor", "predecessors", "affiliates"},
	2:  {"business experience"},
	3:  {"litigation"},
	4:  {"bankruptcy"},
	5:  {"initial fees", "initial franchise fee"},
	6:  {"other fees"},
	7:  {"estimated initial investment"},
	8:  {"restrictions on sources"},
	9:  {"franchisee's obligations", "franchisees obligations"},
	10: {"financing"},
	11: {"franchisor's assistance", "advertising", "computer systems", "training"},
	12: {"territory"},
	13: {"trademarks"},
	14: {"patents", "copyrights", "proprietary information"},
	15: {"obligation to participate", "actual operation"},
	16: {"restrictions on what", "may sell"},
	17: {"renewal, termination, transfer", "dispute resolution"},
	18: {"public figures"},
	19: {"financial performance representation"},
	20: {"outlets and franchisee information", "table of outlets"},
	21: {"financial statements"},
	22: {"contracts"},
	23: {"receipts"},
	24: {"state specific addenda", "state addenda"},
	25: {"exhibits"},
}
