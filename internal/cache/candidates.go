package cache

import "path/filepath"

// DefaultFileName is the cache file written by the image pipeline.
const DefaultFileName = "sephora_image_urls.json"

// Candidates builds the ordered search list for fileName: the explicit path when
// set, the working directory and its parent, then execDir and up to maxAncestors
// of its ancestors. Empty directories are skipped and duplicates dropped.
func Candidates(fileName, explicitPath, workDir, execDir string, maxAncestors int) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	if explicitPath != "" {
		add(explicitPath)
	}
	if workDir != "" {
		add(filepath.Join(workDir, fileName))
		add(filepath.Join(filepath.Dir(workDir), fileName))
	}
	if execDir != "" {
		dir := filepath.Clean(execDir)
		for i := 0; i <= maxAncestors; i++ {
			add(filepath.Join(dir, fileName))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return out
}
