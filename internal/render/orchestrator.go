package render

import (
	"context"
	"fmt"
	"path"
	"time"

	"slidecast/internal/ffmpeg"
	"slidecast/internal/pkg/errors"
	"slidecast/internal/pkg/ids"
	"slidecast/internal/pkg/logger"
)

// State is a step of a render attempt.
type State string

const (
	StateValidating State = "validating"
	StateFetching   State = "fetching"
	StateEncoding   State = "encoding"
	StatePublishing State = "publishing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// Observer is told about every state an attempt enters, in order.
type Observer func(attemptID string, s State)

type observerKey struct{}

// WithObserver attaches an observer for renders run with the returned
// context. It is called after the Orchestrator's own observer.
func WithObserver(ctx context.Context, obs Observer) context.Context {
	return context.WithValue(ctx, observerKey{}, obs)
}

// ObserverFrom returns the observer attached with WithObserver, or nil.
func ObserverFrom(ctx context.Context) Observer {
	obs, _ := ctx.Value(observerKey{}).(Observer)
	return obs
}

// Encoder runs one encode. *ffmpeg.Encoder is the real implementation.
type Encoder interface {
	Encode(ctx context.Context, inv ffmpeg.Invocation) error
}

// Options configures an Orchestrator.
type Options struct {
	Timing    ffmpeg.Timing
	WorkDir   string
	ImageExt  string
	AudioExt  string
	KeyPrefix string
	Observer  Observer
	Logger    *logger.Logger
}

// Result is a completed render. It is only returned on success.
type Result struct {
	AttemptID string        `json:"attempt_id"`
	Name      string        `json:"name"`
	Key       string        `json:"key"`
	URL       string        `json:"url"`
	Elapsed   time.Duration `json:"-"`
}

// Orchestrator runs render attempts: validate, fetch all assets, build the
// graph and encode, publish. Attempts share nothing but the collaborators and
// may run concurrently.
type Orchestrator struct {
	fetcher   Fetcher
	encoder   Encoder
	publisher Publisher
	opts      Options
	log       *logger.Logger
}

func NewOrchestrator(fetcher Fetcher, encoder Encoder, publisher Publisher, opts Options) *Orchestrator {
	if opts.ImageExt == "" {
		opts.ImageExt = ".jpg"
	}
	if opts.AudioExt == "" {
		opts.AudioExt = ".ogg"
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault()
	}
	return &Orchestrator{
		fetcher:   fetcher,
		encoder:   encoder,
		publisher: publisher,
		opts:      opts,
		log:       log.WithComponent("render"),
	}
}

// attempt carries the per-render state so the stages stay small.
type attempt struct {
	id     string
	req    Request
	ws     *Workspace
	assets []StagedAsset
	output string
	name   string
	log    *logger.Logger
	obs    Observer
}

// Render runs one attempt. On failure the error carries one of the
// VALIDATION_ERROR, FETCH_ERROR, ENCODE_ERROR, PUBLISH_ERROR or CANCELED
// codes and the result is nil. Every file the attempt created is removed
// before Render returns.
func (o *Orchestrator) Render(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	a := &attempt{id: ids.New(), req: req, obs: ObserverFrom(ctx)}
	a.log = o.log.FromContext(ctx).WithAttemptID(a.id)

	url, err := o.run(ctx, a)
	if err != nil {
		o.enter(a, StateFailed)
		a.log.WithError(err).Warn("render failed",
			"code", string(errors.GetCode(err)),
			"elapsed", time.Since(started).String(),
		)
		return nil, err
	}

	o.enter(a, StateDone)
	res := &Result{
		AttemptID: a.id,
		Name:      a.name,
		Key:       o.key(a.name),
		URL:       url,
		Elapsed:   time.Since(started),
	}
	a.log.Info("render completed", "url", res.URL, "elapsed", res.Elapsed.String())
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, a *attempt) (string, error) {
	o.enter(a, StateValidating)
	if err := a.req.Validate(); err != nil {
		return "", err
	}

	ws, err := NewWorkspace(o.opts.WorkDir, a.id)
	if err != nil {
		return "", errors.Wrap(err, "render.workspace", "create workspace")
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			a.log.WithError(err).Warn("workspace cleanup incomplete", "dir", ws.Dir())
		}
	}()
	a.ws = ws
	o.stage(a)

	o.enter(a, StateFetching)
	if err := FetchAll(ctx, o.fetcher, a.assets); err != nil {
		return "", err
	}

	o.enter(a, StateEncoding)
	if err := o.encode(ctx, a); err != nil {
		return "", err
	}

	o.enter(a, StatePublishing)
	url, err := o.publisher.Publish(ctx, a.output, o.key(a.name), VideoContentType)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodePublish, "render.publish", "publish failed")
	}
	return url, nil
}

// stage lays out the per-attempt paths. Every path is tracked before any
// download or encode can write to it.
func (o *Orchestrator) stage(a *attempt) {
	a.assets = make([]StagedAsset, 0, len(a.req.Images)+1)
	for i, ref := range a.req.Images {
		a.assets = append(a.assets, StagedAsset{
			Index: i,
			Ref:   ref,
			Path:  a.ws.Path(fmt.Sprintf("img%d%s", i, o.opts.ImageExt)),
			Kind:  KindImage,
		})
	}
	a.assets = append(a.assets, StagedAsset{
		Index: len(a.req.Images),
		Ref:   a.req.Audio,
		Path:  a.ws.Path("audio" + o.opts.AudioExt),
		Kind:  KindAudio,
	})
	a.name = a.req.OutputName(ids.Short(a.id))
	a.output = a.ws.Path(a.name)
}

func (o *Orchestrator) encode(ctx context.Context, a *attempt) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeCanceled, "render.encode", "canceled before encode")
	}

	images := make([]string, 0, len(a.req.Images))
	var audio string
	for _, s := range a.assets {
		if s.Kind == KindAudio {
			audio = s.Path
			continue
		}
		images = append(images, s.Path)
	}

	graph, err := ffmpeg.BuildGraph(len(images), o.opts.Timing)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeEncode, "render.encode", "build filter graph")
	}

	err = o.encoder.Encode(ctx, ffmpeg.Invocation{
		Images: images,
		Audio:  audio,
		Graph:  graph,
		Output: a.output,
	})
	if err != nil {
		e := errors.WrapWithCode(err, errors.CodeEncode, "render.encode", "encode failed")
		var encErr *ffmpeg.EncodeError
		if errors.As(err, &encErr) {
			e = e.WithField("exit_code", encErr.ExitCode)
		}
		return e
	}
	return nil
}

func (o *Orchestrator) key(name string) string {
	if o.opts.KeyPrefix == "" {
		return name
	}
	return path.Join(o.opts.KeyPrefix, name)
}

func (o *Orchestrator) enter(a *attempt, s State) {
	a.log.Debug("render state", "state", string(s))
	if o.opts.Observer != nil {
		o.opts.Observer(a.id, s)
	}
	if a.obs != nil {
		a.obs(a.id, s)
	}
}
