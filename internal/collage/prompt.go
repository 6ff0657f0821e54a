// Package collage turns a week of entries into one generated image and hands
// it to the image upload endpoint.
package collage

import (
	"strings"

	"happythings/internal/models"
)

// MaxPromptThings caps how many things are named in one prompt.
const MaxPromptThings = 50

const basePrompt = "Create a peaceful, nostalgic collage that represents these moments of joy and happiness. " +
	"The image should have a dreamy, gentle quality with soft colors and a warm, comforting atmosphere. " +
	"Style: artistic collage with mixed media elements, incorporating subtle textures and a sentimental feel. " +
	"The overall mood should be serene and contemplative."

// Things flattens the things of entries in order.
func Things(entries []models.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Things...)
	}
	return out
}

func BuildPrompt(things []string) string {
	if len(things) > MaxPromptThings {
		things = things[:MaxPromptThings]
	}
	return basePrompt + "\n\nElements to include: " + strings.Join(things, ", ")
}
