// Package probe inspects media files with ffprobe and produces a typed
// MediaDescriptor: the primary video stream, audio and subtitle tracks
// in discovery order, container name, and file size.
//
// Two independent queries are issued per file (container format and
// per-stream info). Each degrades to an empty section on timeout or
// malformed output; only a missing input file fails the probe.
package probe
