package server

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Camera &amp; Audio Stream</title>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        body { font-family: Arial, sans-serif; text-align: center; margin: 0; padding: 20px; background-color: #f0f0f0; }
        .container { max-width: 800px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px; }
        img { max-width: 100%; border: 1px solid #ddd; border-radius: 4px; }
        .status { margin: 20px 0; padding: 10px; background-color: #f8f8f8; border-radius: 4px; }
        button { padding: 8px 15px; background-color: #4CAF50; color: white; border: none; border-radius: 4px; cursor: pointer; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Live Camera &amp; Audio Stream</h1>
        <div class="status">
            <p>Camera: <span id="videoStatus">-</span></p>
            <p>Audio: <span id="audioStatus">-</span></p>
            <p>Viewers: <span id="viewers">-</span></p>
        </div>
        <div>
            <img src="/stream" id="stream" alt="Camera Stream">
        </div>
        <div>
            <button id="audioToggle">Start Audio</button>
            <span id="audioMessage"></span>
        </div>
    </div>

    <script>
        let audioContext;
        let audioSource;
        let eventSource;
        let isPlaying = false;

        document.getElementById('audioToggle').addEventListener('click', function() {
            if (!isPlaying) {
                if (!audioContext) {
                    try {
                        audioContext = new (window.AudioContext || window.webkitAudioContext)();
                    } catch (e) {
                        document.getElementById('audioMessage').textContent = 'Audio not supported';
                        return;
                    }
                }
                isPlaying = true;
                this.textContent = 'Stop Audio';
                startAudioStream();
            } else {
                isPlaying = false;
                this.textContent = 'Start Audio';
                stopAudioStream();
            }
        });

        function startAudioStream() {
            eventSource = new EventSource('/audio-stream');
            eventSource.onmessage = function(event) {
                if (!isPlaying) {
                    eventSource.close();
                    return;
                }
                const data = JSON.parse(event.data);
                if (data.payload) {
                    playAudioData(atob(data.payload));
                }
            };
            eventSource.onerror = function() {
                eventSource.close();
                if (isPlaying) {
                    setTimeout(startAudioStream, 2000);
                }
            };
        }

        function stopAudioStream() {
            if (eventSource) {
                eventSource.close();
                eventSource = null;
            }
            if (audioSource) {
                audioSource.stop();
                audioSource = null;
            }
        }

        // 16-bit mono PCM at 16kHz, converted to float32 for Web Audio
        function playAudioData(audioData) {
            const pcmData = new Float32Array(audioData.length / 2);
            let index = 0;
            for (let i = 0; i < audioData.length; i += 2) {
                const sample = (audioData.charCodeAt(i) & 0xff) | ((audioData.charCodeAt(i + 1) & 0xff) << 8);
                const signedSample = sample > 0x7fff ? sample - 0x10000 : sample;
                pcmData[index++] = signedSample / 32768.0;
            }
            const buffer = audioContext.createBuffer(1, pcmData.length, 16000);
            buffer.getChannelData(0).set(pcmData);
            audioSource = audioContext.createBufferSource();
            audioSource.buffer = buffer;
            audioSource.connect(audioContext.destination);
            audioSource.start(0);
        }

        setInterval(function() {
            fetch('/status')
                .then(response => response.json())
                .then(data => {
                    document.getElementById('videoStatus').textContent = data.video.status;
                    document.getElementById('audioStatus').textContent = data.audio.status;
                    document.getElementById('viewers').textContent = data.video.subscribers + data.audio.subscribers;
                })
                .catch(() => {
                    document.getElementById('videoStatus').textContent = 'Error';
                });
        }, 5000);

        document.getElementById('stream').onerror = function() {
            setTimeout(() => {
                this.src = '/stream?' + new Date().getTime();
            }, 2000);
        };
    </script>
</body>
</html>
`
