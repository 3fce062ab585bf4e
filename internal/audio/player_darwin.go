//go:build darwin

package audio

func playerCandidates() [][]string {
	return [][]string{
		{"afplay", fileArg},
	}
}
