package urlkey

// Policy controls which normalised URLs IsAllowed will accept.
type Policy struct {
	AllowedDomains  []string
	ExcludePatterns []string
}

func NewPolicy(allowedDomains, excludePatterns []string) Policy {
	return Policy{
		AllowedDomains:  allowedDomains,
		ExcludePatterns: excludePatterns,
	}
}

// binaryAssetExtensions is the fixed set of path suffixes IsAllowed rejects
// regardless of policy, per the asset-filtering rule.
var binaryAssetExtensions = []string{
	".pdf", ".zip", ".jpg", ".jpeg", ".png", ".gif", ".mp4", ".exe",
	".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".rar", ".7z",
	".tar", ".gz", ".mp3", ".wav", ".avi", ".mov", ".ico", ".svg",
	".woff", ".woff2", ".ttf", ".eot", ".dmg", ".iso",
}
