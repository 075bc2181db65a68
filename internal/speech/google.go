package speech

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"

	"mythos/internal/datauri"
)

// TTSClient is the call GoogleSpeech needs from texttospeech.Client.
type TTSClient interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

// GoogleSpeech narrates with Google Cloud Text-to-Speech (MP3).
type GoogleSpeech struct {
	client       TTSClient
	LanguageCode string
	Voice        string
}

// NewGoogleClient uses Application Default Credentials.
func NewGoogleClient(ctx context.Context) (*texttospeech.Client, error) {
	return texttospeech.NewClient(ctx)
}

func NewGoogleSpeech(client TTSClient, languageCode, voice string) *GoogleSpeech {
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &GoogleSpeech{client: client, LanguageCode: languageCode, Voice: voice}
}

func (g *GoogleSpeech) Synthesize(ctx context.Context, text string) (string, error) {
	clean := CleanNarration(text)
	if clean == "" {
		return "", fmt.Errorf("%w: %w", ErrSpeechGeneration, ErrEmptyNarration)
	}

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: clean},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.LanguageCode,
			Name:         g.Voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpeechGeneration, err)
	}
	if len(resp.GetAudioContent()) == 0 {
		return "", fmt.Errorf("%w: empty audio content", ErrSpeechGeneration)
	}
	return datauri.Encode("audio/mpeg", resp.GetAudioContent()), nil
}
