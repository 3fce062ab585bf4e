//go:build windows

package audio

func playerCandidates() [][]string {
	return [][]string{
		{"powershell", "-NoProfile", "-NonInteractive", "-Command",
			"(New-Object Media.SoundPlayer '" + fileArg + "').PlaySync()"},
	}
}
