package decorate

const copyIcon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M19,21H8V7H19M19,5H8A2,2 0 0,0 6,7V21A2,2 0 0,0 8,23H19A2,2 0 0,0 21,21V7A2,2 0 0,0 19,5M16,1H4A2,2 0 0,0 2,3V17H4V3H16V1Z"/></svg>`

const checkIcon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M9 16.17L4.83 12l-1.42 1.41L9 19L21 7l-1.41-1.41L9 16.17z"></path></svg>`

const copyScript = `
async function copyMarkdownForLLM(button) {
    const editBtn = document.querySelector('a[title="Edit this page"]');
    if (!editBtn) return;

    const originalHTML = button.innerHTML;
    const checkIcon = '` + checkIcon + `';

    let rawUrl = editBtn.href.replace('github.com', 'raw.githubusercontent.com');
    rawUrl = rawUrl.replace('/blob/', '/').replace('/tree/', '/');

    try {
        const response = await fetch(rawUrl);
        let markdown = await response.text();

        if (markdown.startsWith('---')) {
            const frontMatterEnd = markdown.indexOf('\n---\n', 3);
            if (frontMatterEnd !== -1) {
                markdown = markdown.substring(frontMatterEnd + 5).trim();
            }
        }

        const title = document.querySelector('h1')?.textContent || document.title;
        const content = '# ' + title + '\n\nSource: ' + window.location.href + '\n\n---\n\n' + markdown;

        await navigator.clipboard.writeText(content);
        button.innerHTML = checkIcon + ' Copied!';
        setTimeout(() => { button.innerHTML = originalHTML; }, 2000);
    } catch (err) {
        button.innerHTML = 'Failed';
        setTimeout(() => { button.innerHTML = originalHTML; }, 2000);
    }
}
`

const footerCSS = `
.md-content__button[onclick*="copyMarkdownForLLM"] svg {
    width: 1.2rem;
    height: 1.2rem;
    fill: currentColor;
}

.git-info, .dates-container, .authors-container, .share-buttons {
    display: flex;
    align-items: center;
    justify-content: flex-end;
    flex-wrap: wrap;
}

.git-info {
    font-size: 0.8em;
    color: grey;
    margin-bottom: 10px;
}

.dates-container, .authors-container {
    margin-bottom: 10px;
}

.date-item, .author-link, .share-button {
    display: flex;
    align-items: center;
    cursor: pointer;
}

.date-item {
    margin-right: 10px;
}

.hover-item {
    transition: all 0.2s ease;
    filter: grayscale(100%);
}

.date-item .hover-item {
    font-size: 1.6em;
    margin-right: 5px;
}

.author-link .hover-item {
    width: 50px;
    height: 50px;
    border-radius: 50%;
    margin-right: 3px;
    background-color: #f0f0f0;
    opacity: 0;
    transition: opacity 0.3s ease-in-out;
}

.author-link .hover-item[src] {
    opacity: 1;
}

.share-buttons {
    margin-top: 10px;
}

.share-button {
    background-color: #1da1f2;
    color: white;
    padding: 6px 12px;
    border-radius: 5px;
    border: none;
    font-size: 0.95em;
    margin: 5px;
    transition: all 0.2s ease;
}

.share-button.linkedin {
    background-color: #0077b5;
}

.share-button i {
    margin-right: 5px;
    font-size: 1.1em;
}

.share-button:hover,
.hover-item:hover {
    color: var(--md-accent-fg-color);
    transform: scale(1.1);
    filter: brightness(1.2) grayscale(0%);
}

@media (max-width: 1024px) {
    .git-info {
        flex-direction: column;
        align-items: flex-end;
    }
    .dates-container, .authors-container {
        width: 100%;
    }
}
`
