package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// ErrUnsupportedAudio is returned when audio is not a playable WAV file
var ErrUnsupportedAudio = errors.New("audio is not a valid WAV file")

// PCMToWAV wraps raw 16-bit little-endian mono PCM into a WAV container
func PCMToWAV(pcm []byte, sampleRate int) ([]byte, error) {
	if len(pcm)%2 != 0 {
		pcm = pcm[:len(pcm)-1]
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	// Emulate a file in RAM so that we don't have to create a real file.
	file := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(file, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("encoder write buffer: %w", err)
	}

	// Close the encoder to finalize the WAV file headers
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoder close: %w", err)
	}

	return io.ReadAll(file.Reader())
}

// DecodeWAV returns interleaved 16-bit samples plus channel count and sample rate
func DecodeWAV(data []byte) ([]int16, int, int, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, 0, 0, ErrUnsupportedAudio
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode WAV: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, 0, 0, ErrUnsupportedAudio
	}

	shift := int(decoder.BitDepth) - 16
	out := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch {
		case shift > 0:
			v >>= shift
		case shift < 0:
			v <<= -shift
		}
		out[i] = int16(v)
	}

	return out, buf.Format.NumChannels, buf.Format.SampleRate, nil
}
