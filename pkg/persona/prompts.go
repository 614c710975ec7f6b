package persona

import (
	"fmt"
	"strings"

	"personas/pkg/corpus"
)

const SystemPrompt = "You are a UX research expert who creates detailed user personas. " +
	"You must respond with valid JSON that EXACTLY matches the schema provided, including all fields with appropriate types. " +
	"Do not include any explanation or text outside the JSON object."

const RandomTemplate = `Create a random user persona with diverse interests and backgrounds.
The persona should be realistic but not necessarily interested in this type of website.
You must return a JSON object with EXACTLY this structure (example values shown):
{
  "name": "Sarah Chen",
  "avatar": "https://images.unsplash.com/photo-1494790108377-be9c29b29330",
  "type": "Digital Native",
  "description": "Tech-savvy professional who values efficiency and user experience",
  "demographics": {
    "age": 28,
    "gender": "Female",
    "occupation": "Product Manager",
    "education": "Master's in Business Administration",
    "location": "San Francisco, CA"
  },
  "goals": ["Streamline daily workflows", "Stay updated with industry trends", "Build meaningful connections"],
  "frustrations": ["Complex navigation systems", "Slow loading times", "Inconsistent user interfaces"],
  "behaviors": ["Frequently uses mobile devices", "Researches thoroughly before decisions", "Active on professional networks"],
  "motivations": ["Career growth", "Learning new skills", "Solving complex problems"],
  "techProficiency": "High",
  "preferredChannels": ["Mobile apps", "Web platforms", "Professional networks"]
}`

const PotentialTemplate = `Create a detailed UX persona who would be a potential user of this website: {url}
The persona should be realistic and specific to this type of website.
You must return a JSON object with EXACTLY this structure (example values shown):
{
  "name": "Michael Rodriguez",
  "avatar": "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d",
  "type": "Tech Professional",
  "description": "Software developer seeking efficient development tools and resources",
  "demographics": {
    "age": 32,
    "gender": "Male",
    "occupation": "Senior Software Engineer",
    "education": "Bachelor's in Computer Science",
    "location": "Austin, TX"
  },
  "goals": ["Find reliable development resources", "Improve coding efficiency", "Stay updated with latest technologies"],
  "frustrations": ["Outdated documentation", "Poor API integration examples", "Limited community support"],
  "behaviors": ["Regular code contributions", "Active in tech communities", "Early adopter of new tools"],
  "motivations": ["Technical excellence", "Professional growth", "Community collaboration"],
  "techProficiency": "Expert",
  "preferredChannels": ["GitHub", "Stack Overflow", "Developer forums"]
}`

// Prompt builds the user message for mode, appending a hint drawn from example when it
// is not nil.
func Prompt(url string, mode corpus.Mode, example *corpus.Entry) string {
	var b strings.Builder
	if mode == corpus.ModeRandom {
		b.WriteString(RandomTemplate)
	} else {
		b.WriteString(strings.ReplaceAll(PotentialTemplate, "{url}", url))
	}

	if example != nil {
		fmt.Fprintf(&b, "\n\nConsider incorporating some of these traits in your response:\nInterests: %s\nSkills: %s\nPersonality: %s",
			list(example.Interests), list(example.Skills), list(example.PersonalityTraits))
	}
	return b.String()
}

func list(s []string) string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, ", ")
}
