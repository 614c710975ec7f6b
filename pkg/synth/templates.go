package synth

import (
	"fmt"
	"slices"
	"strings"
)

type Template string

const (
	TemplateInstruction Template = "instruction"
	TemplateKnowledge   Template = "knowledge"
	TemplateNPC         Template = "npc"
	TemplateMath        Template = "math"
	TemplateUXPersona   Template = "ux_persona"
)

var templates = map[Template]string{
	TemplateInstruction: `Guess a prompt (i.e., instructions) that the following persona may ask you to do:

{persona}

Note:

1. The prompt should be informative and specific.
2. Your output should start with "User prompt:"`,

	TemplateKnowledge: `{persona}

Assume you are the persona described above and you are writing a Quora article using your knowledge, skills, experience, or insights.

Note:

1. The article should be specific, informative and knowledge-rich.
2. Your response should start with "Title:"`,

	TemplateNPC: `Create a Non-Player Character (NPC) for the game "World of Warcraft" based on the following persona:

{persona}

Note:

1. Your response should start with "Name:".`,

	TemplateMath: `Create a math problem related to the following persona:

{persona}

Note:

1. The math problem should be challenging and involve advanced mathematical skills and knowledge. Only top talents can solve it correctly.
2. You should make full use of the persona description to create the math problem to ensure that the math problem is unique and specific to the persona.
3. Your response should always start with "Math problem:". Your response should not include a solution to the created math problem.
4. Your created math problem should include no more than 2 sentences.`,

	TemplateUXPersona: `Turn the following persona into a UX research persona for product design:

{persona}

Note:

1. Describe their demographics, goals, frustrations, behaviors, motivations and preferred channels.
2. Rate their tech proficiency as Low, Medium, High or Expert.
3. Your response should start with "Persona:".`,
}

// Templates lists the valid template names in sorted order.
func Templates() []string {
	names := make([]string, 0, len(templates))
	for t := range templates {
		names = append(names, string(t))
	}
	slices.Sort(names)
	return names
}

func ParseTemplate(name string) (Template, error) {
	t := Template(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := templates[t]; !ok {
		return "", fmt.Errorf("invalid template %q, choose from %s", name, strings.Join(Templates(), ", "))
	}
	return t, nil
}

// Format substitutes persona into the template.
func (t Template) Format(persona string) string {
	return strings.ReplaceAll(templates[t], "{persona}", persona)
}
