package fileindexer

import "strings"

// languageByExtension maps a lowercased file extension (with leading
// dot) to the Document.Language value used for filtering and display.
var languageByExtension = map[string]string{
	".go":     "go",
	".cs":     "csharp",
	".java":   "java",
	".kt":     "kotlin",
	".py":     "python",
	".rb":     "ruby",
	".js":     "javascript",
	".jsx":    "javascript",
	".ts":     "typescript",
	".tsx":    "typescript",
	".c":      "c",
	".h":      "c",
	".cc":     "cpp",
	".cpp":    "cpp",
	".hpp":    "cpp",
	".rs":     "rust",
	".swift":  "swift",
	".m":      "objective-c",
	".mm":     "objective-c",
	".scala":  "scala",
	".php":    "php",
	".sh":     "shell",
	".bash":   "shell",
	".ps1":    "powershell",
	".sql":    "sql",
	".yaml":   "yaml",
	".yml":    "yaml",
	".json":   "json",
	".toml":   "toml",
	".md":     "markdown",
	".txt":    "text",
	".html":   "html",
	".css":    "css",
	".scss":   "scss",
	".vue":    "vue",
	".proto":  "protobuf",
	".graphql": "graphql",
}

func languageFor(ext string) string {
	if lang, ok := languageByExtension[strings.ToLower(ext)]; ok {
		return lang
	}
	return "unknown"
}
