//go:build linux

package audio

func playerCandidates() [][]string {
	return [][]string{
		{"paplay", fileArg},
		{"pw-play", fileArg},
		{"aplay", "-q", fileArg},
	}
}
