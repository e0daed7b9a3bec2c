package models

import "time"

// User represents an account within the RantSmith platform.
type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	DisplayName     string
	Bio             string
	AIPersonality   string
	PreferredFormat string
	CreatedAt       time.Time
	LastLoginAt     *time.Time
}

// Transformation types a rant can be rendered into.
const (
	TransformPoem         = "poem"
	TransformRap          = "rap"
	TransformStory        = "story"
	TransformSong         = "song"
	TransformMotivational = "motivational"
	TransformComedy       = "comedy"
)

// TransformationTypes lists every supported target format.
var TransformationTypes = []string{
	TransformPoem,
	TransformRap,
	TransformStory,
	TransformSong,
	TransformMotivational,
	TransformComedy,
}

// Tones modify the voice of a transformation.
var Tones = []string{"neutral", "positive", "dramatic", "sarcastic", "emotional", "humorous"}

// Privacy settings for a rant.
const (
	PrivacyPrivate = "private"
	PrivacyPublic  = "public"
)

// Input types describe how a rant entered the system.
const (
	InputText  = "text"
	InputAudio = "audio"
	InputImage = "image"
)

// Processing status values for a rant.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Emotions the analyzer can detect.
const (
	EmotionAngry      = "angry"
	EmotionFrustrated = "frustrated"
	EmotionSad        = "sad"
	EmotionAnxious    = "anxious"
	EmotionExcited    = "excited"
	EmotionHappy      = "happy"
	EmotionConfused   = "confused"
	EmotionNeutral    = "neutral"
)

// Personalities for the AI chat companion.
const (
	PersonalitySupportive   = "supportive"
	PersonalitySarcastic    = "sarcastic"
	PersonalityHumorous     = "humorous"
	PersonalityMotivational = "motivational"
	PersonalityProfessional = "professional"
)

// Personalities lists every supported companion personality.
var Personalities = []string{
	PersonalitySupportive,
	PersonalitySarcastic,
	PersonalityHumorous,
	PersonalityMotivational,
	PersonalityProfessional,
}

// Rant is a unit of user-submitted text awaiting or holding AI analysis.
type Rant struct {
	ID                 string
	UserID             string
	Content            string
	InputType          string
	TransformationType string
	Tone               string
	Privacy            string
	DetectedEmotion    string
	EmotionConfidence  float64
	SentimentScore     float64
	Keywords           []string
	Processed          bool
	Status             string
	CreatedAt          time.Time
	ProcessedAt        *time.Time
}

// Content type values for generated output.
const (
	ContentText  = "text"
	ContentAudio = "audio"
	ContentImage = "image"
	ContentVideo = "video"
)

// GeneratedContent stores one AI-produced output derived from a rant.
type GeneratedContent struct {
	ID             string
	UserID         string
	RantID         string
	ContentType    string
	Title          string
	Body           string
	ArtifactURL    string
	ModelUsed      string
	ProcessingTime time.Duration
	IsFavorite     bool
	CreatedAt      time.Time
}

// Session records an issued bearer token so logout can revoke it early.
type Session struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
}

// ValidTransformationType reports whether t names a supported format.
func ValidTransformationType(t string) bool {
	for _, known := range TransformationTypes {
		if known == t {
			return true
		}
	}
	return false
}

// ValidTone reports whether t names a supported tone.
func ValidTone(t string) bool {
	for _, known := range Tones {
		if known == t {
			return true
		}
	}
	return false
}

// ValidPersonality reports whether p names a supported chat personality.
func ValidPersonality(p string) bool {
	for _, known := range Personalities {
		if known == p {
			return true
		}
	}
	return false
}
