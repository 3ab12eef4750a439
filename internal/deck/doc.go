// Package deck turns a lesson plan into the content and images of a six-slide
// presentation.
//
// The pipeline has two stages. The Analyzer asks the text model for four
// marker-delimited sections (LessonTitle, StartUp, Practice, Application) and a
// separate game idea, and composes the closing slide locally. The Illustrator
// derives a drawable scene for every usable section and asks the image model
// for one picture per slide, or for all of them at once in combined mode.
//
// Every model call goes through a retry.Controller, which only retries rate
// limits. Failures are isolated: a content failure fills every section with
// domain.ContentErrorPlaceholder, while an image failure marks a single slide.
package deck
