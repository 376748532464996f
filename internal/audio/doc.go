// Package audio plays the sound attached to a popup's icon.
// Sounds are decoded once with beep (WAV, OGG and MP3) and cached until the
// file changes on disk.
package audio
