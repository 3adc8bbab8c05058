package probe

// HDRType returns "hdr10" if the video stream carries HDR color
// metadata (smpte2084/arib-std-b67 transfer or bt2020 primaries),
// otherwise "sdr". Shown in analysis output; renditions are always
// encoded as H.264 SDR regardless.
func (d *MediaDescriptor) HDRType() string {
	if d.Video == nil {
		return "sdr"
	}

	switch d.Video.ColorTransfer {
	case "smpte2084", "arib-std-b67":
		return "hdr10"
	}

	if d.Video.ColorPrimaries == "bt2020" {
		return "hdr10"
	}

	return "sdr"
}
