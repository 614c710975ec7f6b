package schema

// Profile is the part of a persona the model is asked to produce.
type Profile struct {
	Name              string       `json:"name" jsonschema_description:"Full name of the persona"`
	Avatar            string       `json:"avatar" jsonschema_description:"Portrait URL, typically an Unsplash photo"`
	Type              string       `json:"type" jsonschema_description:"Primary user type, e.g. Digital Native"`
	Description       string       `json:"description" jsonschema_description:"One-line summary of the persona"`
	Demographics      Demographics `json:"demographics" jsonschema_description:"Demographic details"`
	Goals             []string     `json:"goals" jsonschema_description:"What the persona aims to achieve with the website"`
	Frustrations      []string     `json:"frustrations" jsonschema_description:"Pain points the persona runs into"`
	Behaviors         []string     `json:"behaviors" jsonschema_description:"Typical actions and habits online"`
	Motivations       []string     `json:"motivations" jsonschema_description:"What drives the persona"`
	TechProficiency   string       `json:"techProficiency" jsonschema_description:"Comfort with technology: Low, Medium, High or Expert"`
	PreferredChannels []string     `json:"preferredChannels" jsonschema_description:"How the persona prefers to interact"`
}

type Demographics struct {
	Age        float64 `json:"age" jsonschema_description:"Age in years"`
	Gender     string  `json:"gender"`
	Occupation string  `json:"occupation"`
	Education  string  `json:"education"`
	Location   string  `json:"location"`
}

// Persona is a generated profile plus the fields added by enrichment and the pipeline.
// Enrichment fields are omitted until a reference entry has been merged in.
type Persona struct {
	Profile

	Interests         []string `json:"interests,omitzero"`
	Skills            []string `json:"skills,omitzero"`
	Hobbies           []string `json:"hobbies,omitzero"`
	PersonalityTraits []string `json:"personality_traits,omitzero"`
	PainPoints        []string `json:"pain_points,omitzero"`

	ID       string    `json:"id"`
	Status   Status    `json:"status"`
	IsLocked bool      `json:"isLocked"`
	Messages []Message `json:"messages"`
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusTesting   Status = "testing"
	StatusCompleted Status = "completed"
)

// Message is a chat line exchanged with a persona in the front end.
type Message struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
	Timestamp   int64  `json:"timestamp"`
}
