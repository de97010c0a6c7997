package responsebuilder

import "time"

// Build shapes hits into the response envelope of spec §6, applying
// grouping, snippets, hotspots, distributions, paging, and the token
// budget clamp of spec §4.9.
func Build(hits []Hit, opts BuildOptions) *Response {
	start := time.Now()
	if opts.ContextLines <= 0 {
		opts.ContextLines = 2
	}
	if opts.HotspotLimit <= 0 {
		opts.HotspotLimit = 5
	}
	if opts.TotalCap <= 0 {
		opts.TotalCap = 100
	}
	if opts.Format == "" {
		opts.Format = "json"
	}

	groups := groupByFile(hits)
	totalFiles := len(groups)

	hasMore := opts.Offset+opts.TotalCap < totalFiles
	end := opts.Offset + opts.TotalCap
	if end > totalFiles {
		end = totalFiles
	}
	begin := opts.Offset
	if begin > totalFiles {
		begin = totalFiles
	}
	page := groups[begin:end]

	files := make([]FileMatch, 0, len(page))
	for _, g := range page {
		files = append(files, toFileMatch(g, opts.ContextLines, opts.PerFileCap))
	}

	data := &Data{
		Files:                 files,
		Hotspots:              hotspots(groups, opts.HotspotLimit),
		ExtensionDistribution: extensionDistribution(groups),
		DirectoryDistribution: directoryDistribution(groups),
	}

	display := resolveDisplay(opts, data)
	if display == DisplaySummary {
		stripSnippets(data)
	}

	clampToBudget(data, opts)

	summary := ResultsSummary{
		TotalHits:     len(hits),
		TotalFiles:    totalFiles,
		ReturnedFiles: len(data.Files),
		HasMore:       hasMore,
	}
	if hasMore && len(opts.HMACKey) > 0 {
		summary.ContinuationToken = EncodeContinuationToken(opts.HMACKey, opts.QueryFingerprint, end)
	}
	data.Summary = summary
	data.SuggestedActions = suggestedActions(summary, opts)

	estimated := dataTokens(data)

	return &Response{
		Success: true,
		Mode:    opts.Mode,
		Format:  opts.Format,
		Data:    data,
		Display: string(display),
		Metadata: Metadata{
			TotalHits:          summary.TotalHits,
			TotalFiles:         summary.TotalFiles,
			ElapsedMillis:      time.Since(start).Milliseconds(),
			EstimatedTokens:    estimated,
			DisplayMode:        string(display),
			DetailRequestToken: summary.ContinuationToken,
		},
	}
}

// BuildError produces the failure envelope of spec §6/§7.
func BuildError(mode, code, message string, steps, suggestedActions []string) *Response {
	resp := &Response{
		Success: false,
		Mode:    mode,
		Format:  "json",
		Error:   &ErrorInfo{Code: code, Message: message},
	}
	if len(steps) > 0 || len(suggestedActions) > 0 {
		resp.Recovery = &RecoveryInfo{Steps: steps, SuggestedActions: suggestedActions}
	}
	return resp
}

func resolveDisplay(opts BuildOptions, data *Data) DisplayMode {
	if opts.Display != DisplayAdaptive {
		return opts.Display
	}
	if dataTokens(data) > opts.TokenBudget {
		return DisplaySummary
	}
	return DisplayFull
}

func stripSnippets(data *Data) {
	for i := range data.Files {
		data.Files[i].Snippets = nil
	}
}

// clampToBudget implements spec §4.9's safety clamp: drop context lines
// first, then reduce the number of returned hits, recomputing after
// each step -- a small fixed-point loop rather than a solver.
func clampToBudget(data *Data, opts BuildOptions) {
	if opts.TokenBudget <= 0 {
		return
	}
	for dataTokens(data) > opts.TokenBudget {
		if dropOneContextLine(data) {
			continue
		}
		if len(data.Files) == 0 {
			return
		}
		data.Files = data.Files[:len(data.Files)-1]
	}
}

func dropOneContextLine(data *Data) bool {
	dropped := false
	for i := range data.Files {
		snippets := data.Files[i].Snippets
		for j := range snippets {
			if len(snippets[j].ContextAfter) > 0 {
				snippets[j].ContextAfter = snippets[j].ContextAfter[:len(snippets[j].ContextAfter)-1]
				dropped = true
			} else if len(snippets[j].ContextBefore) > 0 {
				snippets[j].ContextBefore = snippets[j].ContextBefore[1:]
				dropped = true
			}
		}
	}
	return dropped
}

// suggestedActions produces 2-5 descriptive follow-ups, per spec §4.9
// step 6.
func suggestedActions(summary ResultsSummary, opts BuildOptions) []FollowUpAction {
	actions := []FollowUpAction{
		{Description: "Narrow the search with an extension or path filter", EstimatedTokens: 0},
		{Description: "Re-run in Code mode for identifier-aware matching", EstimatedTokens: 0},
	}
	if summary.HasMore {
		actions = append(actions, FollowUpAction{
			Description:     "Fetch the next page using the continuation token",
			EstimatedTokens: estimateTokens(summary.ContinuationToken),
		})
	}
	if summary.TotalFiles > 0 {
		actions = append(actions, FollowUpAction{
			Description:     "Request recent_files to see what else changed nearby",
			EstimatedTokens: 50,
		})
	}
	if len(actions) > 5 {
		actions = actions[:5]
	}
	return actions
}
