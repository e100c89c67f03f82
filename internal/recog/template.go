package recog

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"
	xdraw "golang.org/x/image/draw"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// templateStore loads reference images on first use and keeps them as
// grayscale mats for the lifetime of the process. Templates are authored at
// the base resolution and rescaled once to the live display scale.
type templateStore struct {
	dir   string
	scale float64

	mu   sync.Mutex
	mats map[string]gocv.Mat
}

func newTemplateStore(dir string, scale float64) *templateStore {
	return &templateStore{dir: dir, scale: scale, mats: map[string]gocv.Mat{}}
}

func (s *templateStore) get(name string) (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mat, ok := s.mats[name]; ok {
		return mat, nil
	}

	path := filepath.Join(s.dir, filepath.Clean(name))
	f, err := os.Open(path)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("opening template %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("decoding template %s: %w", path, err)
	}

	if math.Abs(s.scale-1.0) > 0.01 {
		b := src.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0,
			int(float64(b.Dx())*s.scale), int(float64(b.Dy())*s.scale)))
		xdraw.BiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
		src = dst
	}

	mat, err := gocv.ImageToMatRGB(src)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("converting template %s: %w", path, err)
	}
	gray := gocv.NewMat()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	mat.Close()

	s.mats[name] = gray
	return gray, nil
}

// MatchTemplate locates the named reference image within img. It returns the
// single best correlation peak; the resolver applies the acceptance threshold.
func (e *Engine) MatchTemplate(ctx context.Context, img image.Image, template string) ([]schemas.TemplateMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpl, err := e.templates.get(template)
	if err != nil {
		return nil, schemas.NewError(schemas.ClassRecognitionError, schemas.PhaseResolution, err)
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, schemas.NewError(schemas.ClassRecognitionError, schemas.PhaseResolution,
			fmt.Errorf("converting capture for template match: %w", err))
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	if tmpl.Cols() > gray.Cols() || tmpl.Rows() > gray.Rows() {
		return nil, schemas.Errorf(schemas.ClassRecognitionError, schemas.PhaseResolution,
			"template %q (%dx%d) larger than capture (%dx%d)",
			template, tmpl.Cols(), tmpl.Rows(), gray.Cols(), gray.Rows())
	}

	result := gocv.NewMat()
	defer result.Close()
	gocv.MatchTemplate(gray, tmpl, &result, gocv.TmCcoeffNormed, gocv.NewMat())
	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

	match := schemas.TemplateMatch{
		Rect:  image.Rect(maxLoc.X, maxLoc.Y, maxLoc.X+tmpl.Cols(), maxLoc.Y+tmpl.Rows()),
		Score: float64(maxVal),
	}
	return []schemas.TemplateMatch{match}, nil
}
