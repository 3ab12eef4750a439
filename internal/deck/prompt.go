package deck

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/lessondeck/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.tmpl taxonomy.yaml
var assets embed.FS

// Category is one entry of the content taxonomy.
type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Rule        string `yaml:"rule"`
	Section     string `yaml:"section"`
}

type taxonomyFile struct {
	Categories []Category `yaml:"categories"`
}

var (
	taxonomy  []Category
	templates *template.Template
)

func init() {
	raw, err := assets.ReadFile("taxonomy.yaml")
	if err != nil {
		panic(fmt.Sprintf("deck: read taxonomy: %v", err))
	}
	var tf taxonomyFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		panic(fmt.Sprintf("deck: parse taxonomy: %v", err))
	}
	taxonomy = tf.Categories

	templates = template.Must(template.New("prompts").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(assets, "prompts/*.tmpl"))
}

// Taxonomy returns the content categories embedded in the content prompt.
func Taxonomy() []Category {
	out := make([]Category, len(taxonomy))
	copy(out, taxonomy)
	return out
}

type contentPromptData struct {
	domain.LessonInput
	Categories []Category
}

// BuildContentPrompt returns the prompt asking for the four marker-delimited
// sections. Empty lesson fields are left out.
func BuildContentPrompt(in domain.LessonInput) (string, error) {
	return render("content.tmpl", contentPromptData{LessonInput: trimInput(in), Categories: taxonomy})
}

// BuildGameIdeaPrompt returns the prompt asking for a 20 to 40 word game idea.
func BuildGameIdeaPrompt(in domain.LessonInput) (string, error) {
	return render("game_idea.tmpl", trimInput(in))
}

// BuildVisualPrompt returns the prompt turning slide text into a drawable scene.
func BuildVisualPrompt(slideText string) (string, error) {
	return render("visual.tmpl", strings.TrimSpace(slideText))
}

// BuildCombinedImagePrompt returns one image prompt covering every scene.
func BuildCombinedImagePrompt(scenes []string) (string, error) {
	return render("combined_images.tmpl", scenes)
}

// ClosingText composes the closing slide locally from the lesson title.
func ClosingText(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Cảm ơn các em đã chú ý lắng nghe!"
	}
	return fmt.Sprintf("Chúng ta vừa học xong bài \"%s\".\nCảm ơn các em đã chú ý lắng nghe!", title)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute %s: %w", name, err)
	}
	return buf.String(), nil
}

func trimInput(in domain.LessonInput) domain.LessonInput {
	in.Lesson = strings.TrimSpace(in.Lesson)
	in.StartUp = strings.TrimSpace(in.StartUp)
	in.Practice = strings.TrimSpace(in.Practice)
	in.Apply = strings.TrimSpace(in.Apply)
	in.Module = strings.TrimSpace(in.Module)
	return in
}
