package clip

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/hajimehoshi/go-mp3"
)

// DecodeWAV decodes an 8/16/24/32-bit PCM mono or stereo WAV stream.
func DecodeWAV(name string, r io.ReadSeeker, target beep.SampleRate) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid WAV file", ErrUnsupportedFormat, name)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("%w: %s has bit depth %d", ErrUnsupportedFormat, name, bitDepth)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav %s: %w", name, err)
	}

	data, err := intBufferFrames(pcm, bitDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, name, err)
	}

	return fromFrames(name, beep.SampleRate(pcm.Format.SampleRate), target, data), nil
}

// intBufferFrames converts interleaved integer PCM to stereo float frames.
// Mono is duplicated to both channels.
func intBufferFrames(pcm *audio.IntBuffer, bitDepth int) ([][2]float64, error) {
	if pcm.Format == nil {
		return nil, fmt.Errorf("missing format")
	}
	ch := pcm.Format.NumChannels
	if ch != 1 && ch != 2 {
		return nil, fmt.Errorf("unsupported number of channels: %d", ch)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	norm := func(v int) float64 {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			return float64(v-128) / 128
		}
		return float64(v) / scale
	}

	n := len(pcm.Data) / ch
	data := make([][2]float64, n)
	for i := range n {
		l := norm(pcm.Data[i*ch])
		r := l
		if ch == 2 {
			r = norm(pcm.Data[i*ch+1])
		}
		data[i] = [2]float64{l, r}
	}
	return data, nil
}

// DecodeMP3 decodes an MPEG-1/2 Layer III stream. go-mp3 always yields
// 16-bit little-endian stereo.
func DecodeMP3(name string, r io.Reader, target beep.SampleRate) (*Clip, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, name, err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3 %s: %w", name, err)
	}

	const frameSize = 4
	n := len(raw) / frameSize
	data := make([][2]float64, n)
	for i := range n {
		l := int16(binary.LittleEndian.Uint16(raw[i*frameSize:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*frameSize+2:]))
		data[i] = [2]float64{float64(l) / 32768, float64(r) / 32768}
	}

	return fromFrames(name, beep.SampleRate(decoder.SampleRate()), target, data), nil
}
