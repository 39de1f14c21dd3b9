package services

import (
	"io"

	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/metrics"
	"github.com/stwalsh4118/minerals/internal/titlechain"
	"github.com/stwalsh4118/minerals/internal/viewmodel"
)

// TitleChainService defines the title-chain dashboard operations.
type TitleChainService interface {
	// Example returns the view of the built-in demonstration dataset.
	Example(user string) viewmodel.TitleChainView

	// Analyze decodes an upload and returns its view.
	// Returns an error wrapping models.ErrMalformedInput for undecodable
	// data and titlechain.ErrUploadTooLarge past the size limit.
	Analyze(r io.Reader, user string) (*viewmodel.TitleChainView, error)

	// MaxUploadBytes is the upload size limit.
	MaxUploadBytes() int64
}

type titleChainService struct {
	maxBytes int64
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewTitleChainService creates a new instance of TitleChainService.
// A non-positive maxBytes uses titlechain.DefaultMaxUploadBytes.
func NewTitleChainService(maxBytes int64, log *logger.Logger, m *metrics.Metrics) TitleChainService {
	if maxBytes <= 0 {
		maxBytes = titlechain.DefaultMaxUploadBytes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &titleChainService{
		maxBytes: maxBytes,
		log:      log.Component("titlechain"),
		metrics:  m,
	}
}

func (s *titleChainService) MaxUploadBytes() int64 {
	return s.maxBytes
}

func (s *titleChainService) Example(user string) viewmodel.TitleChainView {
	view := viewmodel.BuildTitleChain(titlechain.ExampleRows())
	view.Example = true
	view.User = user
	return view
}

func (s *titleChainService) Analyze(r io.Reader, user string) (*viewmodel.TitleChainView, error) {
	rows, err := titlechain.ReadRows(r, s.maxBytes)
	if err != nil {
		s.log.Warn("Rejected title-chain upload", logger.Fields{
			"user":  user,
			"error": err.Error(),
		})
		return nil, err
	}

	s.metrics.TitleChainRows(len(rows))
	s.log.Info("Title-chain upload analyzed", logger.Fields{
		"user": user,
		"rows": len(rows),
	})

	view := viewmodel.BuildTitleChain(rows)
	view.User = user
	return &view, nil
}
