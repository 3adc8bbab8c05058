// Package playlist assembles the HLS multivariant manifest tying the
// finished renditions together.
//
// The manifest format is fixed: one EXT-X-MEDIA entry per audio
// rendition (the first is the default), then one EXT-X-STREAM-INF
// pair per video rendition in ladder order. Players select among the
// variants; anything the pipeline failed to produce must not be
// listed, so callers pass only renditions whose jobs succeeded.
package playlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/hlsmill/internal/ladder"
)

// MasterName is the multivariant manifest filename.
const MasterName = "master.m3u8"

// h264HighProfile is the CODECS attribute advertised for every video
// variant (H.264 High profile, level 4.1).
const h264HighProfile = "avc1.640029"

// AudioRendition describes one finished audio alternative.
type AudioRendition struct {
	Name     string // rendition name, unique within a run ("eng", "eng_1")
	Language string // tag written to the LANGUAGE attribute
	Dir      string // directory under the output root ("audio_eng")
}

// Render produces the master playlist text. Lines are joined with
// single newlines and the file carries no trailing newline.
func Render(profiles []ladder.RenditionProfile, audio []AudioRendition) string {
	var b strings.Builder
	b.WriteString("#EXTM3U")

	for i, a := range audio {
		def := "NO"
		if i == 0 {
			def = "YES"
		}
		fmt.Fprintf(&b,
			"\n#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID=\"audio\",NAME=\"%s\",DEFAULT=%s,AUTOSELECT=YES,LANGUAGE=\"%s\",URI=\"%s/playlist.m3u8\"",
			a.Name, def, a.Language, a.Dir)
	}

	for _, p := range profiles {
		fmt.Fprintf(&b,
			"\n#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d,CODECS=\"%s\",AUDIO=\"audio\"",
			p.MaxBitrateKbps*1000, p.Width, p.Height, h264HighProfile)
		fmt.Fprintf(&b, "\n%s/playlist.m3u8", p.Name)
	}

	return b.String()
}

// WriteMaster renders the manifest for the given renditions and writes
// it into dir, returning the written path.
func WriteMaster(dir string, profiles []ladder.RenditionProfile, audio []AudioRendition) (string, error) {
	path := filepath.Join(dir, MasterName)
	if err := os.WriteFile(path, []byte(Render(profiles, audio)), 0o644); err != nil {
		return "", fmt.Errorf("write master playlist: %w", err)
	}
	return path, nil
}
