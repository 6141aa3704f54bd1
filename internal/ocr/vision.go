package ocr

import (
	"context"
	"image"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/ironsheep/food-label-mcp/internal/imaging"
	"github.com/ironsheep/food-label-mcp/internal/layout"
)

// MaxVisionImageBytes is the Vision API limit for inline image content.
const MaxVisionImageBytes = 20 * 1024 * 1024

// VisionOptions configures the Google Cloud Vision engine.
type VisionOptions struct {
	// CredentialsJSON holds a service account key. Takes precedence over
	// CredentialsFile.
	CredentialsJSON string

	// CredentialsFile is a path to a service account key file.
	CredentialsFile string

	// LanguageHints are BCP-47 codes passed to the API, e.g. "en".
	LanguageHints []string
}

// imageAnnotator is the subset of the Vision client used by VisionEngine.
type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionEngine recognizes text with Google Cloud Vision document text
// detection. Every detected word becomes a fragment.
type VisionEngine struct {
	client imageAnnotator
	hints  []string
}

// NewVisionEngine dials the Vision API. Credentials are taken from opts,
// then from GOOGLE_CREDENTIALS (inline JSON) and
// GOOGLE_APPLICATION_CREDENTIALS (file path), then from the default
// application credentials.
func NewVisionEngine(ctx context.Context, opts VisionOptions) (*VisionEngine, error) {
	const op = "NewVisionEngine"

	credJSON := opts.CredentialsJSON
	if credJSON == "" {
		credJSON = os.Getenv("GOOGLE_CREDENTIALS")
	}
	credFile := opts.CredentialsFile
	if credFile == "" {
		credFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}

	var (
		client *vision.ImageAnnotatorClient
		err    error
	)
	switch {
	case credJSON != "":
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with inline credentials")
		}
	case credFile != "":
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with credentials file")
		}
	default:
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, err.Error())
		}
	}

	return newVisionEngineWithClient(client, opts.LanguageHints), nil
}

func newVisionEngineWithClient(client imageAnnotator, hints []string) *VisionEngine {
	return &VisionEngine{client: client, hints: hints}
}

// Name implements Engine.
func (e *VisionEngine) Name() string {
	return EngineVision
}

// Close releases the underlying API connection.
func (e *VisionEngine) Close() error {
	return e.client.Close()
}

// Recognize implements Engine.
func (e *VisionEngine) Recognize(ctx context.Context, img image.Image) ([]layout.Fragment, error) {
	const op = "Vision.Recognize"

	if img == nil {
		return nil, WrapOCRError(op, ErrNoImage, "")
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to encode image")
	}
	if len(data) > MaxVisionImageBytes {
		return nil, WrapOCRError(op, ErrOCRFailed, "encoded image exceeds 20MB")
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}
	if len(e.hints) > 0 {
		req.Requests[0].ImageContext = &visionpb.ImageContext{LanguageHints: e.hints}
	}

	resp, err := e.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, "Vision API call failed: "+err.Error())
	}
	if len(resp.GetResponses()) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	imgResp := resp.GetResponses()[0]
	if imgResp.GetError() != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, "Vision API error: "+imgResp.GetError().GetMessage())
	}

	return fragmentsFromAnnotation(imgResp.GetFullTextAnnotation()), nil
}

// fragmentsFromAnnotation flattens the page/block/paragraph/word hierarchy
// into one fragment per word. Words without a four-vertex box are skipped.
func fragmentsFromAnnotation(doc *visionpb.TextAnnotation) []layout.Fragment {
	var fragments []layout.Fragment
	for _, page := range doc.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, para := range block.GetParagraphs() {
				for _, word := range para.GetWords() {
					f, ok := wordFragment(word)
					if ok {
						fragments = append(fragments, f)
					}
				}
			}
		}
	}
	return fragments
}

func wordFragment(word *visionpb.Word) (layout.Fragment, bool) {
	vertices := word.GetBoundingBox().GetVertices()
	if len(vertices) != 4 {
		return layout.Fragment{}, false
	}

	var sb strings.Builder
	for _, sym := range word.GetSymbols() {
		sb.WriteString(sym.GetText())
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return layout.Fragment{}, false
	}

	var box layout.BoundingBox
	for i, v := range vertices {
		box[i] = layout.Point{X: float64(v.GetX()), Y: float64(v.GetY())}
	}

	return layout.Fragment{
		Text:       text,
		Confidence: float64(word.GetConfidence()),
		Box:        box,
	}, true
}
