/*
MIT License

Copyright (c) 2019 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package listener_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"time"

	libcon "github.com/sabouaram/reactord/connection"
	. "github.com/sabouaram/reactord/listener"
	libsts "github.com/sabouaram/reactord/status"
	"github.com/sabouaram/reactord/reactor/fallback"
	libvpr "github.com/sabouaram/reactord/viper"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Listener", func() {
	It("rejects a malformed listen string", func() {
		_, err := New(Config{Name: "x", Listen: "nonsense"}, libcon.Callbacks{}, libsts.NewStats())
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown scheme with no codec behind it", func() {
		_, err := New(Config{Name: "x", Listen: "gopher://127.0.0.1:0"}, libcon.Callbacks{}, libsts.NewStats())
		Expect(err).To(HaveOccurred())
	})

	It("treats a codec name as a scheme over tcp", func() {
		l, err := New(Config{Name: "x", Listen: "length://127.0.0.1:0"}, libcon.Callbacks{}, libsts.NewStats())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = l.Close() }()
		Expect(l.Transport().Code()).To(Equal("tcp"))
	})

	It("accepts a tcp connection and drives the codec loop end to end", func() {
		stats := libsts.NewStats()
		got := make(chan string, 4)

		l, err := New(Config{Name: "echo", Listen: "tcp://127.0.0.1:0"}, libcon.Callbacks{
			OnMessage: func(c libcon.Conn, m any) {
				got <- string(m.([]byte))
				c.Send("received: "+string(m.([]byte)), false)
			},
		}, stats)
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = l.Close() }()

		r := fallback.New()
		defer r.Stop()
		Expect(l.Serve(r)).To(Succeed())
		go func() { _ = r.Run() }()

		client, err := net.Dial("tcp", l.Address())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = client.Close() }()

		_, err = client.Write([]byte("xiami\n"))
		Expect(err).ToNot(HaveOccurred())

		Eventually(got, "2s").Should(Receive(Equal("xiami")))

		_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
		buf := make([]byte, 64)
		n, err := client.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("received: xiami\n"))

		Eventually(stats.TotalRequest, "2s").Should(BeNumerically(">=", 1))
		Eventually(l.ConnectionCount, "2s").Should(Equal(1))
	})

	It("replies to a udp datagram through the packet view", func() {
		l, err := New(Config{Name: "udp-echo", Listen: "udp://127.0.0.1:0"}, libcon.Callbacks{
			OnMessage: func(c libcon.Conn, m any) {
				c.Send("received: "+string(m.([]byte)), false)
			},
		}, libsts.NewStats())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = l.Close() }()

		r := fallback.New()
		defer r.Stop()
		Expect(l.Serve(r)).To(Succeed())
		go func() { _ = r.Run() }()

		client, err := net.Dial("udp", l.Address())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = client.Close() }()

		_, err = client.Write([]byte("xiami\n"))
		Expect(err).ToNot(HaveOccurred())

		_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
		buf := make([]byte, 64)
		n, err := client.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("received: xiami\n"))
	})

	It("destroys every live connection on an ungraceful teardown", func() {
		closed := make(chan struct{}, 4)

		l, err := New(Config{Name: "kill", Listen: "tcp://127.0.0.1:0"}, libcon.Callbacks{
			OnClose: func(libcon.Conn) { closed <- struct{}{} },
		}, libsts.NewStats())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = l.Close() }()

		r := fallback.New()
		defer r.Stop()
		Expect(l.Serve(r)).To(Succeed())
		go func() { _ = r.Run() }()

		c1, err := net.Dial("tcp", l.Address())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = c1.Close() }()
		c2, err := net.Dial("tcp", l.Address())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = c2.Close() }()

		Eventually(l.ConnectionCount, "2s").Should(Equal(2))

		l.DestroyConnections()
		Eventually(l.ConnectionCount, "2s").Should(BeZero())
		Eventually(closed, "2s").Should(Receive())
		Eventually(closed, "2s").Should(Receive())
	})

	It("waits for the live table to empty on a graceful drain", func() {
		l, err := New(Config{Name: "drain", Listen: "tcp://127.0.0.1:0"}, libcon.Callbacks{}, libsts.NewStats())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = l.Close() }()

		r := fallback.New()
		defer r.Stop()
		Expect(l.Serve(r)).To(Succeed())
		go func() { _ = r.Run() }()

		client, err := net.Dial("tcp", l.Address())
		Expect(err).ToNot(HaveOccurred())
		Eventually(l.ConnectionCount, "2s").Should(Equal(1))

		done := make(chan struct{})
		go func() {
			l.DrainConnections(context.Background())
			close(done)
		}()

		// still holding a connection: the drain must not return yet
		Consistently(done, "150ms").ShouldNot(BeClosed())

		_ = client.Close()
		Eventually(done, "2s").Should(BeClosed())
	})

	It("gives up a drain when its context ends", func() {
		l, err := New(Config{Name: "bounded", Listen: "tcp://127.0.0.1:0"}, libcon.Callbacks{}, libsts.NewStats())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = l.Close() }()

		r := fallback.New()
		defer r.Stop()
		Expect(l.Serve(r)).To(Succeed())
		go func() { _ = r.Run() }()

		client, err := net.Dial("tcp", l.Address())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = client.Close() }()
		Eventually(l.ConnectionCount, "2s").Should(Equal(1))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		done := make(chan struct{})
		go func() {
			l.DrainConnections(ctx)
			close(done)
		}()
		Eventually(done, "2s").Should(BeClosed())
	})

	It("stops admitting connections while accept is paused", func() {
		connected := make(chan struct{}, 4)

		l, err := New(Config{Name: "gate", Listen: "tcp://127.0.0.1:0"}, libcon.Callbacks{
			OnConnect: func(libcon.Conn) { connected <- struct{}{} },
		}, libsts.NewStats())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = l.Close() }()

		r := fallback.New()
		defer r.Stop()
		Expect(l.Serve(r)).To(Succeed())
		go func() { _ = r.Run() }()

		l.PauseAccept()
		c1, err := net.Dial("tcp", l.Address())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = c1.Close() }()
		Consistently(connected, "150ms").ShouldNot(Receive())

		l.ResumeAccept()
		c2, err := net.Dial("tcp", l.Address())
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = c2.Close() }()
		Eventually(connected, "2s").Should(Receive())
	})
})

var _ = Describe("LoadConfigs", func() {
	It("decodes and validates the listener list from a config file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "reactord.yaml")
		doc := `listeners:
  - name: api
    listen: tcp://127.0.0.1:9000
  - name: ws
    listen: websocket://127.0.0.1:2000
    maxSendBufferSize: 16384
`
		Expect(os.WriteFile(path, []byte(doc), 0600)).To(Succeed())

		v := libvpr.New(context.Background(), nil)
		v.SetConfigFile(path)
		Expect(v.Config()).To(Succeed())

		cfgs, err := LoadConfigs(v)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfgs).To(HaveLen(2))
		Expect(cfgs[0].Name).To(Equal("api"))
		Expect(cfgs[1].MaxSendBufferSize).To(Equal(16384))
	})

	It("rejects an invalid entry", func() {
		v := libvpr.New(context.Background(), nil)
		v.Viper().Set("listeners", []map[string]any{{"name": "incomplete"}})

		_, err := LoadConfigs(v)
		Expect(err).To(HaveOccurred())
	})

	It("yields an empty set when the key is absent", func() {
		v := libvpr.New(context.Background(), nil)
		cfgs, err := LoadConfigs(v)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfgs).To(BeEmpty())
	})
})

var _ = Describe("scheme-driven construction", func() {
	It("binds a unix socket and closes it cleanly", func() {
		dir := GinkgoT().TempDir()
		sock := filepath.Join(dir, "r.sock")

		l, err := New(Config{Name: "u", Listen: "unix://" + sock}, libcon.Callbacks{}, libsts.NewStats())
		Expect(err).ToNot(HaveOccurred())
		Expect(l.Transport().Code()).To(Equal("unix"))
		Expect(l.Close()).To(Succeed())
	})
})
