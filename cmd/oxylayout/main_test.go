package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const meshWGSL = `struct VertexInput {
    @location(0) position: vec3f,
    //@oxy:element u8 norm
    @location(1) color: vec4f,
}

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4f {
    return vec4f(in.position, 1.0);
}
`

func writeShader(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, false)
	return code, stdout.String(), stderr.String()
}

func TestRun_PrintsLayout(t *testing.T) {
	path := writeShader(t, "mesh.wgsl", meshWGSL)
	code, out, _ := runCLI(t, "-check", "-backend", "wgpu", path)
	if code != 0 {
		t.Fatalf("exit code %d, output:\n%s", code, out)
	}
	for _, want := range []string{
		path + ":VertexInput",
		"stride 16, step Vertex",
		"Float32x3",
		"Unorm8x4",
		"wgpu: ok",
		"vs_main inputs ok",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_BackendRejectsFormat(t *testing.T) {
	path := writeShader(t, "double.wgsl", "struct V {\n  //@oxy:element f64\n  @location(0) p: vec2f,\n}\n")
	code, out, _ := runCLI(t, "-backend", "gputypes", path)
	if code != 1 || !strings.Contains(out, "format not supported") {
		t.Errorf("exit code %d, output:\n%s", code, out)
	}
	if code, out, _ = runCLI(t, "-backend", "vulkan", path); code != 0 {
		t.Errorf("vulkan exit code %d, output:\n%s", code, out)
	}
}

func TestRun_ResolveError(t *testing.T) {
	path := writeShader(t, "bad.wgsl", "struct V {\n  //@oxy:element u16\n  @location(0) p: vec3f,\n}\n")
	code, out, _ := runCLI(t, path)
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(out, "invalid_arity") || !strings.Contains(out, "line 3") {
		t.Errorf("output does not explain the failure:\n%s", out)
	}
}

func TestRun_CheckMismatch(t *testing.T) {
	src := strings.Replace(meshWGSL, "//@oxy:element u8 norm", "//@oxy:element u8", 1)
	path := writeShader(t, "mismatch.wgsl", src)
	code, out, _ := runCLI(t, "-check", path)
	if code != 1 || !strings.Contains(out, "does not match shader input") {
		t.Errorf("exit code %d, output:\n%s", code, out)
	}
}

func TestRun_Usage(t *testing.T) {
	code, _, errOut := runCLI(t)
	if code != 2 || !strings.Contains(errOut, "Usage: oxylayout") {
		t.Errorf("exit code %d, stderr:\n%s", code, errOut)
	}
	if code, _, _ = runCLI(t, "-backend", "metal", "x.wgsl"); code != 2 {
		t.Errorf("unknown backend exit code %d, want 2", code)
	}
}

func TestRun_MissingFile(t *testing.T) {
	code, out, _ := runCLI(t, filepath.Join(t.TempDir(), "nope.wgsl"))
	if code != 1 || !strings.Contains(out, "failed to read source file") {
		t.Errorf("exit code %d, output:\n%s", code, out)
	}
}
