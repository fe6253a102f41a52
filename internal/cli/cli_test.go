package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"go-worklog/internal/assistant"
	"go-worklog/internal/config"
	"go-worklog/internal/jira"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

// fakeJira records write requests and serves one issue with two worklogs.
type fakeJira struct {
	mu       sync.Mutex
	bodies   map[string]map[string]any
	property string
}

func (f *fakeJira) record(name string, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)
	if body == nil {
		body = map[string]any{"raw": string(data)}
	}
	f.mu.Lock()
	f.bodies[name] = body
	f.mu.Unlock()
}

func (f *fakeJira) setProperty(v string) {
	f.mu.Lock()
	f.property = v
	f.mu.Unlock()
}

func (f *fakeJira) getProperty() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.property
}

func (f *fakeJira) body(name string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[name]
}

func newFakeJira(t *testing.T) (*fakeJira, string) {
	t.Helper()
	f := &fakeJira{bodies: map[string]map[string]any{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/myself", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"accountId":"a1","displayName":"Ada"}`)
	})
	mux.HandleFunc("GET /rest/api/3/project/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"values":[{"id":"1","key":"OPS","name":"Operations"}]}`)
	})
	mux.HandleFunc("POST /rest/api/3/search/jql", func(w http.ResponseWriter, r *http.Request) {
		f.record("search", r)
		writeJSON(w, http.StatusOK, `{"issues":[{"id":"10","key":"OPS-1","fields":{"summary":"Certificates","project":{"key":"OPS","name":"Operations"},"issuetype":{"name":"Task"}}}]}`)
	})
	mux.HandleFunc("GET /rest/api/3/issue/OPS-1/worklog", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"startAt":0,"maxResults":100,"total":2,"worklogs":[
			{"id":"1","author":{"accountId":"a1","displayName":"Ada"},"started":"2024-03-01T09:00:00.000+0000","timeSpentSeconds":5400},
			{"id":"2","author":{"accountId":"a2","displayName":"Linus"},"started":"2024-03-02T09:00:00.000+0000","timeSpentSeconds":3600}
		]}`)
	})
	mux.HandleFunc("POST /rest/api/3/issue/{key}/worklog", func(w http.ResponseWriter, r *http.Request) {
		f.record("add", r)
		writeJSON(w, http.StatusCreated, `{"id":"900","started":"2024-03-01T09:00:00.000+0000","timeSpentSeconds":7200}`)
	})
	mux.HandleFunc("PUT /rest/api/3/issue/{key}/worklog/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record("update", r)
		writeJSON(w, http.StatusOK, `{"id":"900"}`)
	})
	mux.HandleFunc("DELETE /rest/api/3/issue/{key}/worklog/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"errorMessages":["Cannot find worklog"]}`)
	})
	mux.HandleFunc("POST /rest/api/3/issue", func(w http.ResponseWriter, r *http.Request) {
		f.record("create", r)
		writeJSON(w, http.StatusCreated, `{"id":"11","key":"OPS-2"}`)
	})
	mux.HandleFunc("GET /rest/api/3/user/properties/{key}", func(w http.ResponseWriter, r *http.Request) {
		prop := f.getProperty()
		if prop == "" {
			writeJSON(w, http.StatusNotFound, `{"errorMessages":["property not found"]}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"key":"`+r.PathValue("key")+`","value":`+prop+`}`)
	})
	mux.HandleFunc("PUT /rest/api/3/user/properties/{key}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a1", r.URL.Query().Get("accountId"))
		data, _ := io.ReadAll(r.Body)
		f.setProperty(string(data))
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// isolate points config at an empty dir and sets basic credentials.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("WORKLOG_CONFIG_DIR", t.TempDir())
	t.Setenv("WORKLOG_NO_KEYRING", "1")
	for _, v := range []string{"JIRA_URL", "JIRA_BEARER_TOKEN", "JIRA_AUTH_SCHEME", "JIRA_SEARCH_PATH", "JIRA_EPIC_NAME_FIELD", "GEMINI_API_KEY", "GEMINI_MODEL"} {
		t.Setenv(v, "")
	}
	t.Setenv("JIRA_EMAIL", "ada@example.com")
	t.Setenv("JIRA_API_TOKEN", "tok")
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if url != "" {
		args = append(args, "--url", url)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "worklog version dev\n", out)
}

func TestBrokenConfigFile(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(config.Path(), []byte("{not json"), 0600))

	_, err := run(t, "", "me")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config file")

	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")

	root := NewRootCmd()
	for name, want := range map[string]bool{"config": false, "version": false, "me": true, "report": true} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, want, needsConfig(sub), name)
	}
}

func TestMissingURL(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "me")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jira url is not set")
	assert.Equal(t, jira.ExitUsage, jira.ExitCodeFor(err))
}

func TestReadCommands(t *testing.T) {
	isolate(t)
	f, url := newFakeJira(t)

	for _, args := range [][]string{
		{"me"},
		{"projects"},
		{"issues", "--max", "5"},
		{"worklogs", "ops-1"},
		{"dashboard", "--chart", "author"},
		{"report", "--from", "2024-03-02", "--project", "OPS"},
		{"report", "--by-day"},
		{"report", "--issue", "ops-1"},
		{"ask", "who", "worked", "the", "most?"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, err := run(t, url, args...)
			assert.NoError(t, err)
		})
	}
	assert.EqualValues(t, 50, f.body("search")["maxResults"], "last search used the default issue cap")
}

func TestLogCommand(t *testing.T) {
	isolate(t)
	f, url := newFakeJira(t)

	_, err := run(t, url, "log", "OPS-1", "--time", "2h", "--comment", "Rotated certs", "--started", "2024-03-01 09:00")
	require.NoError(t, err)

	body := f.body("add")
	assert.Equal(t, "2h", body["timeSpent"])
	assert.Contains(t, body["started"], "2024-03-01T09:00:00.000")
	assert.Contains(t, body, "comment")
}

func TestWorklogUpdateCommand(t *testing.T) {
	isolate(t)
	f, url := newFakeJira(t)

	_, err := run(t, url, "worklog", "update", "OPS-1", "900", "--hours", "1.5")
	require.NoError(t, err)
	assert.EqualValues(t, 5400, f.body("update")["timeSpentSeconds"])
}

func TestWorklogDeleteNotFound(t *testing.T) {
	isolate(t)
	_, url := newFakeJira(t)

	_, err := run(t, url, "worklog", "delete", "OPS-1", "900", "--yes")
	require.Error(t, err)
	assert.Equal(t, jira.ExitNotFound, jira.ExitCodeFor(err))
}

func TestIssueCreateEpicNeedsName(t *testing.T) {
	isolate(t)
	f, url := newFakeJira(t)

	_, err := run(t, url, "issue", "create", "--project", "OPS", "--summary", "Q3 platform", "--type", "Epic")
	require.Error(t, err)
	assert.Equal(t, jira.ExitValidation, jira.ExitCodeFor(err))
	assert.Nil(t, f.body("create"))

	t.Setenv("JIRA_EPIC_NAME_FIELD", "customfield_10104")
	_, err = run(t, url, "issue", "create", "--project", "OPS", "--summary", "Q3 platform", "--type", "Epic", "--epic-name", "Q3")
	require.NoError(t, err)
	fields, ok := f.body("create")["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Q3", fields["customfield_10104"])
}

func TestPrefsRoundTrip(t *testing.T) {
	isolate(t)
	f, url := newFakeJira(t)

	_, err := run(t, url, "prefs", "get", DashboardProperty)
	require.NoError(t, err, "an unset property is not an error")

	_, err = run(t, url, "prefs", "set", DashboardProperty, "issue")
	require.NoError(t, err)
	assert.Equal(t, `"issue"`, f.getProperty())

	_, err = run(t, url, "prefs", "get", DashboardProperty)
	require.NoError(t, err)
}

func TestResolveChart(t *testing.T) {
	isolate(t)
	f, url := newFakeJira(t)

	client, err := jira.NewClient(url, jira.Options{Email: "ada@example.com", APIToken: "tok"})
	require.NoError(t, err)
	app := NewApp(config.Default(), GlobalFlags{})
	ctx := context.Background()

	got, err := resolveChart(ctx, app, client, "")
	require.NoError(t, err)
	assert.Equal(t, "day", got, "default without a stored preference")

	f.setProperty(`{"chart":"project"}`)
	got, err = resolveChart(ctx, app, client, "")
	require.NoError(t, err)
	assert.Equal(t, "project", got)

	got, err = resolveChart(ctx, app, client, "month")
	require.NoError(t, err)
	assert.Equal(t, "month", got, "flag wins over the preference")

	_, err = resolveChart(ctx, app, client, "pie")
	assert.Error(t, err)

	f.setProperty(`"nonsense"`)
	got, err = resolveChart(ctx, app, client, "")
	require.NoError(t, err)
	assert.Equal(t, "day", got)
}

func TestAskFreeformWithoutGemini(t *testing.T) {
	isolate(t)
	_, url := newFakeJira(t)

	_, err := run(t, url, "ask", "anything", "unusual?")
	assert.ErrorIs(t, err, assistant.ErrNoModel)
}

func TestParseStarted(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"", now},
		{"2024-03-01", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		{"2024-03-01 13:15", time.Date(2024, 3, 1, 13, 15, 0, 0, time.UTC)},
		{"2024-03-01T13:15", time.Date(2024, 3, 1, 13, 15, 0, 0, time.UTC)},
		{"2024-03-01T13:15:00Z", time.Date(2024, 3, 1, 13, 15, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseStarted(tt.in, now)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}

	_, err := parseStarted("yesterday", now)
	assert.Error(t, err)
}

func TestPropertyValue(t *testing.T) {
	assert.Equal(t, json.RawMessage(`{"chart":"day"}`), propertyValue(`{"chart":"day"}`))
	assert.Equal(t, json.RawMessage(`42`), propertyValue(`42`))
	assert.Equal(t, "issue", propertyValue("issue"))
}

func TestDashboardPreference(t *testing.T) {
	assert.Equal(t, "issue", dashboardPreference(json.RawMessage(`"issue"`)))
	assert.Equal(t, "month", dashboardPreference(json.RawMessage(`{"chart":"month"}`)))
	assert.Equal(t, "", dashboardPreference(json.RawMessage(`[1]`)))
}
