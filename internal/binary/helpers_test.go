package binary

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor"

	"github.com/ZebulonRouseFrantzich/relinstall/internal/platform"
)

// tarEntry describes one member of a test archive.
type tarEntry struct {
	name     string
	content  string
	typeflag byte
}

// buildTarGz returns a gzip-compressed tar archive holding entries in order.
func buildTarGz(t *testing.T, entries ...tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, e := range entries {
		typeflag := e.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		header := &tar.Header{
			Name:     e.name,
			Mode:     0755,
			Typeflag: typeflag,
		}
		if typeflag == tar.TypeReg {
			header.Size = int64(len(e.content))
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", e.name, err)
		}
		if typeflag == tar.TypeReg {
			if _, err := tarWriter.Write([]byte(e.content)); err != nil {
				t.Fatalf("failed to write content for %s: %v", e.name, err)
			}
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gzipWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}

// writeTestFile writes data to name under a fresh temp dir and returns its path.
func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// manifestFor builds a checksums.txt body in sha256sum format.
func manifestFor(files map[string][]byte) string {
	var b strings.Builder
	for name, data := range files {
		b.WriteString(sha256Hex(data) + "  " + name + "\n")
	}
	return b.String()
}

// fakeTool is a ChecksumTool with scripted behaviour.
type fakeTool struct {
	name      string
	available bool
	sum       func(path string) (string, error)
	calls     int
}

func (f *fakeTool) Name() string    { return f.name }
func (f *fakeTool) Available() bool { return f.available }
func (f *fakeTool) Sum(ctx context.Context, path string) (string, error) {
	f.calls++
	if f.sum == nil {
		return calculateSHA256(path)
	}
	return f.sum(path)
}

// fakeDetector returns a fixed platform.
type fakeDetector struct {
	info *platform.Info
	err  error
}

func (f fakeDetector) Detect(ctx context.Context) (*platform.Info, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func linuxAMD64() *platform.Info {
	return &platform.Info{OS: platform.OSLinux, Arch: platform.ArchAMD64, ArchRaw: "x86_64"}
}

// newTestEntity generates a signing key for a test.
func newTestEntity(t *testing.T, name string) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity(name, "test", name+"@example.com", nil)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return entity
}

// signDetached returns an armored or binary detached signature over data.
func signDetached(t *testing.T, signer *openpgp.Entity, data []byte, armored bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	if armored {
		err = openpgp.ArmoredDetachSign(&buf, signer, bytes.NewReader(data), nil)
	} else {
		err = openpgp.DetachSign(&buf, signer, bytes.NewReader(data), nil)
	}
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	return buf.Bytes()
}

// publicKeyring serializes the public half of entity.
func publicKeyring(t *testing.T, entity *openpgp.Entity, armored bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	if !armored {
		if err := entity.Serialize(&buf); err != nil {
			t.Fatalf("failed to serialize key: %v", err)
		}
		return buf.Bytes()
	}

	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("failed to create armor writer: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("failed to serialize key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close armor writer: %v", err)
	}
	return buf.Bytes()
}

// releaseServer serves a release index and release assets for acme/context.
type releaseServer struct {
	*httptest.Server
	apiHits atomic.Int32
	tag     string
	// assets maps a file name to its body; missing names return 404.
	assets map[string][]byte
	// apiStatus overrides the release index status when non-zero.
	apiStatus int
	// onAsset runs before an asset is served.
	onAsset func(w http.ResponseWriter, r *http.Request, name string) bool
}

func newReleaseServer(t *testing.T, tag string, assets map[string][]byte) *releaseServer {
	t.Helper()

	rs := &releaseServer{tag: tag, assets: assets}
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/context/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		rs.apiHits.Add(1)
		if rs.apiStatus != 0 {
			w.WriteHeader(rs.apiStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"tag_name": rs.tag}); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})
	mux.HandleFunc("/acme/context/releases/download/", func(w http.ResponseWriter, r *http.Request) {
		prefix := "/acme/context/releases/download/" + rs.tag + "/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, prefix)
		if rs.onAsset != nil && !rs.onAsset(w, r, name) {
			return
		}
		data, ok := rs.assets[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if _, err := w.Write(data); err != nil {
			t.Errorf("failed to write asset: %v", err)
		}
	})

	rs.Server = httptest.NewServer(mux)
	t.Cleanup(rs.Server.Close)
	return rs
}

// assertEmptyDir fails the test unless dir exists and has no entries.
func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("%s should be empty, found %v", dir, names)
	}
}

// assertNotExist fails the test if path exists.
func assertNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s should not exist (stat err = %v)", path, err)
	}
}
