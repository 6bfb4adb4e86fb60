package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"guardfs/internal/fserr"
	"guardfs/internal/policy"
)

func TestWriteStringRoundTrip(t *testing.T) {
	dir := testDir(t)
	file := filepath.Join(dir, "out.txt")
	writer := NewWriter(policy.Restricted(dir), false)

	if err := writer.WriteString(file, "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := writer.WriteString(file, "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != "second" {
		t.Errorf("content = %q, want overwrite semantics", content)
	}
}

func TestWriteBytes(t *testing.T) {
	dir := testDir(t)
	file := filepath.Join(dir, "out.bin")
	writer := NewWriter(policy.Restricted(dir), false)

	data := []byte{0, 1, 2, 3, 4}
	if err := writer.WriteBytes(file, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got) != len(data) {
		t.Errorf("wrote %d bytes, want %d", len(got), len(data))
	}
}

func TestWriteCreateDirs(t *testing.T) {
	dir := testDir(t)
	nested := filepath.Join(dir, "a", "b", "out.txt")

	noCreate := NewWriter(policy.Restricted(dir), false)
	if err := noCreate.WriteString(nested, "x"); err == nil {
		t.Error("write into a missing directory should fail without createDirs")
	}

	create := NewWriter(policy.Restricted(dir), true)
	if err := create.WriteString(nested, "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(nested); err != nil {
		t.Errorf("file should exist: %v", err)
	}
}

func TestWriteSizeCap(t *testing.T) {
	dir := testDir(t)
	p := policy.Policy{AllowedPaths: []string{dir}, MaxFileSize: 3}
	writer := NewWriter(p, false)

	if err := writer.WriteString(filepath.Join(dir, "small.txt"), "abc"); err != nil {
		t.Errorf("content at the cap should pass: %v", err)
	}
	err := writer.WriteString(filepath.Join(dir, "big.txt"), "abcd")
	if !errors.Is(err, fserr.ErrPermissionDenied) {
		t.Errorf("wrong error kind: %v", err)
	}
}

func TestAppendString(t *testing.T) {
	dir := testDir(t)
	file := filepath.Join(dir, "append.txt")
	writer := NewWriter(policy.Restricted(dir), false)

	if err := writer.WriteString(file, "Line 1\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := writer.AppendString(file, "Line 2\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := writer.AppendString(file, "Line 3\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != "Line 1\nLine 2\nLine 3\n" {
		t.Errorf("content = %q", content)
	}
}

func TestAppendCreatesMissingFile(t *testing.T) {
	dir := testDir(t)
	file := filepath.Join(dir, "fresh.txt")
	writer := NewWriter(policy.Restricted(dir), false)

	if err := writer.AppendString(file, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("content = %q", content)
	}
}

func TestReadOnlyPolicyRejectsWrites(t *testing.T) {
	dir := testDir(t)
	existing := writeFixture(t, dir, "keep.txt", "x")
	writer := NewWriter(policy.ReadOnly(dir), false)

	ops := []struct {
		name string
		run  func() error
	}{
		{name: "write", run: func() error { return writer.WriteString(existing, "y") }},
		{name: "append", run: func() error { return writer.AppendString(existing, "y") }},
		{name: "delete", run: func() error { return writer.Delete(existing) }},
		{name: "move", run: func() error { return writer.Move(existing, filepath.Join(dir, "moved.txt")) }},
		{name: "mkdir", run: func() error { return writer.CreateDirectory(filepath.Join(dir, "d"), false) }},
		{name: "rmdir", run: func() error { return writer.RemoveDirectory(dir, false) }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			if err := op.run(); !errors.Is(err, fserr.ErrPermissionDenied) {
				t.Errorf("wrong error kind: %v", err)
			}
		})
	}

	if content, err := os.ReadFile(existing); err != nil || string(content) != "x" {
		t.Errorf("file should be untouched, content=%q err=%v", content, err)
	}
}

func TestDelete(t *testing.T) {
	dir := testDir(t)
	file := writeFixture(t, dir, "doomed.txt", "x")
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writer := NewWriter(policy.Restricted(dir), false)

	if err := writer.Delete(file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}

	if err := writer.Delete(filepath.Join(dir, "missing.txt")); !errors.Is(err, fserr.ErrNotFound) {
		t.Errorf("missing file: wrong error kind: %v", err)
	}
	if err := writer.Delete(sub); !errors.Is(err, fserr.ErrInvalidPath) {
		t.Errorf("directory: wrong error kind: %v", err)
	}
}

func TestMove(t *testing.T) {
	dir := testDir(t)
	src := writeFixture(t, dir, "src.txt", "payload")
	dst := filepath.Join(dir, "dst.txt")
	writer := NewWriter(policy.Restricted(dir), false)

	if err := writer.Move(src, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone")
	}
	content, err := os.ReadFile(dst)
	if err != nil || string(content) != "payload" {
		t.Errorf("destination content=%q err=%v", content, err)
	}

	if err := writer.Move(filepath.Join(dir, "missing.txt"), dst); !errors.Is(err, fserr.ErrNotFound) {
		t.Errorf("missing source: wrong error kind: %v", err)
	}
}

func TestMoveOutsideRootRejected(t *testing.T) {
	dir := testDir(t)
	other := testDir(t)
	src := writeFixture(t, dir, "src.txt", "x")
	writer := NewWriter(policy.Restricted(dir), false)

	err := writer.Move(src, filepath.Join(other, "dst.txt"))
	if !errors.Is(err, fserr.ErrPermissionDenied) {
		t.Errorf("wrong error kind: %v", err)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Error("source must remain when the destination is rejected")
	}
}

func TestCopy(t *testing.T) {
	dir := testDir(t)
	src := writeFixture(t, dir, "src.txt", "copy me")
	dst := filepath.Join(dir, "dst.txt")
	writer := NewWriter(policy.Restricted(dir), false)

	n, err := writer.Copy(src, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != int64(len("copy me")) {
		t.Errorf("bytes copied = %d", n)
	}
	content, err := os.ReadFile(dst)
	if err != nil || string(content) != "copy me" {
		t.Errorf("destination content=%q err=%v", content, err)
	}

	// The source stays in place.
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source should remain: %v", err)
	}
}

func TestCopySourceOverSizeCap(t *testing.T) {
	dir := testDir(t)
	src := writeFixture(t, dir, "big.txt", "0123456789")
	p := policy.Policy{AllowedPaths: []string{dir}, MaxFileSize: 5}
	writer := NewWriter(p, false)

	_, err := writer.Copy(src, filepath.Join(dir, "dst.txt"))
	if !errors.Is(err, fserr.ErrPermissionDenied) {
		t.Errorf("wrong error kind: %v", err)
	}
}

func TestCreateDirectory(t *testing.T) {
	dir := testDir(t)
	writer := NewWriter(policy.Restricted(dir), false)

	single := filepath.Join(dir, "newdir")
	if err := writer.CreateDirectory(single, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := writer.CreateDirectory(single, false); !errors.Is(err, fserr.ErrInvalidPath) {
		t.Errorf("existing target: wrong error kind: %v", err)
	}

	nested := filepath.Join(dir, "a", "b", "c")
	if err := writer.CreateDirectory(nested, false); err == nil {
		t.Error("nested create without recursive should fail")
	}
	if err := writer.CreateDirectory(nested, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info, err := os.Stat(nested); err != nil || !info.IsDir() {
		t.Errorf("nested directory should exist: %v", err)
	}
}

func TestRemoveDirectory(t *testing.T) {
	dir := testDir(t)
	writer := NewWriter(policy.Restricted(dir), false)

	empty := filepath.Join(dir, "empty")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := writer.RemoveDirectory(empty, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	full := filepath.Join(dir, "full")
	writeFixture(t, full, "file.txt", "x")
	if err := writer.RemoveDirectory(full, false); err == nil {
		t.Error("removing a non-empty directory without recursive should fail")
	}
	if err := writer.RemoveDirectory(full, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Error("directory should be gone")
	}

	if err := writer.RemoveDirectory(filepath.Join(dir, "nope"), false); !errors.Is(err, fserr.ErrInvalidPath) {
		t.Errorf("missing directory: wrong error kind: %v", err)
	}

	file := writeFixture(t, dir, "plain.txt", "x")
	if err := writer.RemoveDirectory(file, false); !errors.Is(err, fserr.ErrInvalidPath) {
		t.Errorf("regular file: wrong error kind: %v", err)
	}
}
