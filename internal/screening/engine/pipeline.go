package engine

// blacklistStepType tags the pipeline step whose results feed the evaluator.
const blacklistStepType = "refinitiv-blacklist"

// ExtractCandidates pulls candidate records out of a pipeline container. The
// pipeline key may hold a single step object or a list of steps; results of
// every step tagged as the blacklist source are concatenated in encounter
// order, duplicates preserved. Absent or malformed shapes yield an empty
// list.
func ExtractCandidates(pipelineData map[string]any) []Record {
	var out []Record

	steps, ok := pipelineData["pipeline"]
	if !ok {
		return out
	}

	switch v := steps.(type) {
	case []any:
		for _, raw := range v {
			step, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, extractStepResults(step)...)
		}
	case map[string]any:
		out = append(out, extractStepResults(v)...)
	}

	return out
}

func extractStepResults(step map[string]any) []Record {
	if stepType, _ := step["type"].(string); stepType != blacklistStepType {
		return nil
	}

	results, ok := step["results"].([]any)
	if !ok {
		return nil
	}

	var out []Record
	for _, raw := range results {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, ParseRecord(record))
	}
	return out
}
