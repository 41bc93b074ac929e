package webui

const defaultIndexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>promptblocks</title>
  <style>
    body { font-family: "Segoe UI", sans-serif; margin: 0; background: linear-gradient(145deg,#f7fafc,#e9eef7); color: #1f2937; }
    .wrap { max-width: 1100px; margin: 0 auto; padding: 20px; display: grid; grid-template-columns: 220px 1fr; gap: 16px; }
    .panel { background: #fff; border-radius: 12px; box-shadow: 0 8px 30px rgba(15,23,42,.08); padding: 16px; }
    .block { border-radius: 8px; margin-bottom: 10px; overflow: hidden; border: 1px solid #e5e7eb; }
    .block.over { outline: 2px dashed #0f766e; }
    .head { color: #fff; padding: 6px 10px; display: flex; justify-content: space-between; cursor: move; }
    .blue { background: #3b82f6; } .green { background: #22c55e; } .red { background: #ef4444; }
    .purple { background: #a855f7; } .yellow { background: #eab308; } .gray { background: #6b7280; }
    textarea { width: 100%; box-sizing: border-box; border: 0; padding: 8px; resize: vertical; min-height: 60px; }
    button { padding: 6px 12px; border: 0; border-radius: 8px; background: #0f766e; color: #fff; cursor: pointer; margin: 2px; }
    button.cat.active { background: #134e4a; }
    .head button { background: transparent; padding: 0 4px; }
    #out { white-space: pre-wrap; background: #f9fafb; border: 1px solid #d1d5db; border-radius: 8px; padding: 12px; min-height: 120px; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="panel">
      <h3>Categories</h3><div id="cats"></div>
      <h3>Add block</h3><div id="types"></div>
      <h3>Templates</h3>
      <input id="tname" placeholder="template name" />
      <button id="save">Save</button>
      <div id="templates"></div>
    </div>
    <div class="panel">
      <div>
        <button id="undo">Undo</button>
        <button id="generate">Generate</button>
        <span id="phase"></span>
      </div>
      <div id="blocks"></div>
      <h3>Response</h3>
      <div id="out"></div>
    </div>
  </div>
  <script>
    const api = async (method, path, body) => {
      const resp = await fetch(path, { method, headers: {'Content-Type':'application/json'}, body: body ? JSON.stringify(body) : undefined });
      return resp.json();
    };
    const el = (tag, attrs, text) => { const e = document.createElement(tag); Object.assign(e, attrs || {}); if (text) e.textContent = text; return e; };

    function render(ws) {
      document.querySelectorAll('.cat').forEach(b => b.classList.toggle('active', b.dataset.id === ws.category));
      const list = document.getElementById('blocks');
      list.replaceChildren();
      ws.blocks.forEach(b => {
        const box = el('div', { className: 'block', draggable: true });
        const head = el('div', { className: 'head ' + (b.color || 'gray') });
        head.append(el('span', {}, b.name));
        const tools = el('span');
        if (!b.first) tools.append(el('button', { onclick: () => api('POST', '/api/blocks/' + b.id + '/up').then(render) }, '↑'));
        if (!b.last) tools.append(el('button', { onclick: () => api('POST', '/api/blocks/' + b.id + '/down').then(render) }, '↓'));
        tools.append(el('button', { onclick: () => api('DELETE', '/api/blocks/' + b.id).then(render) }, '×'));
        head.append(tools);
        const text = el('textarea', { value: b.content, placeholder: b.placeholder });
        text.addEventListener('change', () => api('PUT', '/api/blocks/' + b.id, { content: text.value }));
        box.addEventListener('dragstart', () => api('POST', '/api/drag/start', { id: b.id }));
        box.addEventListener('dragover', e => { e.preventDefault(); box.classList.add('over'); });
        box.addEventListener('dragenter', () => api('POST', '/api/drag/hover', { id: b.id }));
        box.addEventListener('dragleave', () => box.classList.remove('over'));
        box.addEventListener('drop', e => { e.preventDefault(); api('POST', '/api/drag/drop').then(render); });
        box.addEventListener('dragend', e => { if (e.dataTransfer.dropEffect === 'none') api('POST', '/api/drag/abort').then(render); });
        box.append(head, text);
        list.append(box);
      });
      showState(ws.generation);
    }

    function showState(s) {
      document.getElementById('phase').textContent = s.phase;
      document.getElementById('generate').disabled = s.phase === 'pending';
      const out = document.getElementById('out');
      if (s.phase === 'succeeded') out.textContent = s.text;
      else if (s.phase === 'failed') out.textContent = 'Error: ' + s.message;
      else if (s.phase === 'pending') out.textContent = 'Generating...';
    }

    async function loadTemplates() {
      const data = await api('GET', '/api/templates');
      const box = document.getElementById('templates');
      box.replaceChildren();
      (data.templates || []).forEach(t => box.append(el('button', { onclick: () => api('POST', '/api/templates/' + encodeURIComponent(t.name) + '/load').then(render) }, t.name)));
    }

    async function init() {
      const meta = await api('GET', '/api/types');
      meta.categories.forEach(c => {
        const b = el('button', { className: 'cat', onclick: () => api('PUT', '/api/category', { category: c.id }).then(render) }, c.name);
        b.dataset.id = c.id;
        document.getElementById('cats').append(b);
      });
      meta.types.forEach(t => document.getElementById('types').append(
        el('button', { className: t.color, onclick: () => api('POST', '/api/blocks', { type: t.id }).then(render) }, t.name)));
      document.getElementById('undo').onclick = () => api('POST', '/api/undo').then(render);
      document.getElementById('generate').onclick = () => api('POST', '/api/generate');
      document.getElementById('save').onclick = async () => {
        await api('POST', '/api/templates', { name: document.getElementById('tname').value });
        loadTemplates();
      };
      render(await api('GET', '/api/workspace'));
      loadTemplates();
      const sock = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/api/ws');
      sock.onmessage = e => showState(JSON.parse(e.data));
    }
    init();
  </script>
</body>
</html>`
