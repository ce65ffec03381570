package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/yega/scaffold/internal/cache"
	"github.com/yega/scaffold/internal/endpoint"
	"github.com/yega/scaffold/internal/naming"
	"github.com/yega/scaffold/internal/provider"
)

type fakeProvider struct {
	calls []provider.GenerateRequest
	reply func(n int, req provider.GenerateRequest) (string, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, req provider.GenerateRequest) (*provider.GenerateResponse, error) {
	f.calls = append(f.calls, req)
	content := "```javascript\nmodule.exports = {};\n```"
	if f.reply != nil {
		var err error
		content, err = f.reply(len(f.calls), req)
		if err != nil {
			return nil, err
		}
	}
	return &provider.GenerateResponse{Content: content, Model: "fake-1", TokensIn: 10, TokensOut: 5}, nil
}

func newRunner(p provider.Provider) (*Runner, afero.Fs) {
	fs := afero.NewMemMapFs()
	return &Runner{
		Provider: p,
		Fs:       fs,
		Dir:      "/app/backend",
		Now:      func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}, fs
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name, in, lang, want string
	}{
		{"language fence", "texto\n```javascript\nconst a = 1;\n```\nfin", "", "const a = 1;\n"},
		{"prefers language", "```bash\nls\n```\n```javascript\nx();\n```", "javascript", "x();\n"},
		{"any fence", "```js\nconst b = 2;\n```", "javascript", "const b = 2;\n"},
		{"custom language", "```typescript\nlet c: number;\n```", "typescript", "let c: number;\n"},
		{"no fence", "  const d = 4;  \n", "", "const d = 4;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCode(tt.in, tt.lang); got != tt.want {
				t.Errorf("ExtractCode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadTaskFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `system: Eres un asistente.
pause: 250ms
max-tokens: 2048
tasks:
  - name: modelo
    prompt: Genera el modelo
    output: models/Cupon.js
    context: [models]
  - prompt: Genera las rutas
    output: routes/cuponRoutes.js
`
	if err := afero.WriteFile(fs, "/tasks.yaml", []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	tf, err := LoadTaskFile(fs, "/tasks.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tf.Tasks) != 2 || tf.MaxTokens != 2048 {
		t.Fatalf("task file = %+v", tf)
	}
	if tf.Tasks[1].Label() != "routes/cuponRoutes.js" {
		t.Errorf("Label = %q", tf.Tasks[1].Label())
	}
	if d, _ := tf.PauseDuration(); d != 250*time.Millisecond {
		t.Errorf("pause = %v", d)
	}
}

func TestLoadTaskFile_Invalid(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"no tasks", "system: x\n", "has no tasks"},
		{"missing output", "tasks:\n  - prompt: p\n", "prompt and output are required"},
		{"bad pause", "pause: soon\ntasks:\n  - prompt: p\n    output: o.js\n", "parsing pause"},
		{"negative pause", "pause: -1s\ntasks:\n  - prompt: p\n    output: o.js\n", "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "/t.yaml", []byte(tt.doc), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadTaskFile(fs, "/t.yaml")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestRun_SequentialAndContinuesAfterFailure(t *testing.T) {
	p := &fakeProvider{reply: func(n int, _ provider.GenerateRequest) (string, error) {
		if n == 2 {
			return "", errors.New("rate limited")
		}
		return "```javascript\n// archivo " + string(rune('0'+n)) + "\n```", nil
	}}
	r, fs := newRunner(p)
	tasks := []Task{
		{Name: "a", Prompt: "uno", Output: "a.js"},
		{Name: "b", Prompt: "dos", Output: "b.js"},
		{Name: "c", Prompt: "tres", Output: "c.js"},
	}
	sum, err := r.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.calls) != 3 {
		t.Fatalf("provider called %d times, want 3", len(p.calls))
	}
	for i, want := range []string{"uno", "dos", "tres"} {
		if p.calls[i].UserMessage != want {
			t.Errorf("call %d = %q, want %q", i, p.calls[i].UserMessage, want)
		}
	}
	if sum.Count(Generated) != 2 || sum.Count(Failed) != 1 {
		t.Errorf("results = %+v", sum.Results)
	}
	if sum.Results[1].Status != Failed || !strings.Contains(sum.Err().Error(), "b: rate limited") {
		t.Errorf("failure not reported: %v", sum.Err())
	}
	data, err := afero.ReadFile(fs, "/app/backend/c.js")
	if err != nil || string(data) != "// archivo 3\n" {
		t.Errorf("c.js = %q, %v", data, err)
	}
	if ok, _ := afero.Exists(fs, "/app/backend/b.js"); ok {
		t.Error("failed task wrote an output")
	}

	lock, err := cache.Load(fs, "/app/backend")
	if err != nil {
		t.Fatal(err)
	}
	if len(lock.Outputs) != 2 {
		t.Errorf("lockfile entries = %d, want 2", len(lock.Outputs))
	}
	entry := lock.Outputs["/app/backend/a.js"]
	if entry.Model != "fake-1" || entry.RunID != sum.RunID || entry.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestRun_SkipsUpToDateUnlessForced(t *testing.T) {
	p := &fakeProvider{}
	r, _ := newRunner(p)
	tasks := []Task{{Prompt: "genera", Output: "models/X.js"}}

	if _, err := r.Run(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
	sum, err := r.Run(context.Background(), tasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.calls) != 1 || sum.Results[0].Status != Skipped {
		t.Errorf("second run: calls=%d status=%v", len(p.calls), sum.Results[0].Status)
	}

	r.Brief = "nuevo contexto"
	if _, err := r.Run(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
	if len(p.calls) != 2 {
		t.Errorf("changed brief should regenerate, calls=%d", len(p.calls))
	}

	r.Force = true
	if _, err := r.Run(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
	if len(p.calls) != 3 {
		t.Errorf("force should regenerate, calls=%d", len(p.calls))
	}
}

func TestRun_RegeneratesDeletedOutput(t *testing.T) {
	p := &fakeProvider{}
	r, fs := newRunner(p)
	tasks := []Task{{Prompt: "genera", Output: "x.js"}}
	if _, err := r.Run(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
	if err := fs.Remove("/app/backend/x.js"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
	if len(p.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(p.calls))
	}
}

func TestRun_SendsContextFilesAndBrief(t *testing.T) {
	p := &fakeProvider{}
	r, fs := newRunner(p)
	r.Brief = "Proyecto YEGA"
	files := map[string]string{
		"/app/backend/models/Tienda.js":   "module.exports = Tienda;\n",
		"/app/backend/models/README.md":   "ignorar",
		"/app/backend/server.js":          "app.listen(3000);\n",
		"/app/backend/models/sub/Extra.ts": "export {};\n",
	}
	for path, body := range files {
		if err := afero.WriteFile(fs, path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tasks := []Task{{Prompt: "genera", Output: "out.js", Context: []string{"models", "server.js", "missing.js"}}}
	if _, err := r.Run(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
	req := p.calls[0]
	if !strings.HasPrefix(req.SystemPrompt, SystemPrompt) || !strings.HasSuffix(req.SystemPrompt, "Contexto adicional:\nProyecto YEGA") {
		t.Errorf("system prompt = %q", req.SystemPrompt)
	}
	for _, want := range []string{
		"Archivo: models/Tienda.js\n```js\nmodule.exports = Tienda;\n```",
		"Archivo: models/sub/Extra.ts",
		"Archivo: server.js",
		"\nTarea: genera",
	} {
		if !strings.Contains(req.UserMessage, want) {
			t.Errorf("user message missing %q:\n%s", want, req.UserMessage)
		}
	}
	if strings.Contains(req.UserMessage, "README") {
		t.Error("non-source file sent as context")
	}
}

func TestRun_CancelledDuringPause(t *testing.T) {
	p := &fakeProvider{}
	r, fs := newRunner(p)
	r.Pause = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	p.reply = func(int, provider.GenerateRequest) (string, error) {
		cancel()
		return "x", nil
	}
	tasks := []Task{{Prompt: "a", Output: "a.js"}, {Prompt: "b", Output: "b.js"}}
	sum, err := r.Run(ctx, tasks)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(p.calls) != 1 || len(sum.Results) != 1 {
		t.Errorf("calls=%d results=%d", len(p.calls), len(sum.Results))
	}
	lock, _ := cache.Load(fs, "/app/backend")
	if _, ok := lock.Outputs["/app/backend/a.js"]; !ok {
		t.Error("lockfile not saved after cancellation")
	}
}

func TestEndpointTasks(t *testing.T) {
	cfg := &endpoint.Config{
		Name:        "cupon",
		Description: "Cupones de descuento",
		Fields: []endpoint.Field{
			{Name: "codigo", Type: endpoint.TypeString, Required: true, Unique: true},
			{Name: "tienda", Type: endpoint.TypeObjectID, Ref: "Tienda"},
		},
		Operations: []endpoint.Operation{endpoint.GetAll, endpoint.Create, endpoint.Custom("canjear")},
		Auth:       true,
		Roles:      []string{"tienda"},
	}
	tasks := EndpointTasks(cfg, naming.New("cupon"))
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	wantOut := []string{"models/Cupon.js", "controllers/cuponController.js", "routes/cuponRoutes.js"}
	for i, w := range wantOut {
		if tasks[i].Output != w {
			t.Errorf("task %d output = %q, want %q", i, tasks[i].Output, w)
		}
	}
	if !strings.Contains(tasks[0].Prompt, "- codigo: String (requerido) (único)") ||
		!strings.Contains(tasks[0].Prompt, "- tienda: ObjectId (referencia a Tienda)") {
		t.Errorf("model prompt:\n%s", tasks[0].Prompt)
	}
	if !strings.Contains(tasks[1].Prompt, "getAllCupons, createCupon, canjear") {
		t.Errorf("controller prompt:\n%s", tasks[1].Prompt)
	}
	if tasks[1].Context[0] != "models/Cupon.js" || tasks[2].Context[0] != "controllers/cuponController.js" {
		t.Errorf("contexts = %v, %v", tasks[1].Context, tasks[2].Context)
	}
	if !strings.Contains(tasks[2].Prompt, "router.post('/canjear', protect, authorize(['tienda']), canjear);") ||
		!strings.Contains(tasks[2].Prompt, "authMiddleware") {
		t.Errorf("routes prompt:\n%s", tasks[2].Prompt)
	}
}
